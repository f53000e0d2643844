package graphql

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Response mirrors the {data, errors} GraphQL envelope.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []ResponseError `json:"errors"`
}

// ResponseError is one entry of the errors array.
type ResponseError struct {
	Message string `json:"message"`
}

// BudgetRejected reports whether any error message signals that the query
// exceeded the provider's complexity budget. This is the expected rejection
// path for unauthenticated access, not a failure.
func (r *Response) BudgetRejected() bool {
	for _, e := range r.Errors {
		if strings.Contains(strings.ToLower(e.Message), "complexity") {
			return true
		}
	}
	return false
}

// OtherErrors returns the messages of all non-budget errors, e.g. an unknown
// player slug. Callers log these as warnings and continue.
func (r *Response) OtherErrors() []string {
	var msgs []string
	for _, e := range r.Errors {
		if !strings.Contains(strings.ToLower(e.Message), "complexity") {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// PriceRecord is one completed Limited auction sale.
type PriceRecord struct {
	// Date is the sale timestamp exactly as returned by the API (ISO-8601).
	// It keys the record within a player's history.
	Date string

	// AmountUSD is the sale price in USD dollars.
	AmountUSD float64
}

// Page is the parsed content of one tokenPrices page.
type Page struct {
	// Sales holds the deal-backed records in API order (most recent first).
	// Price observations without a deal identifier are dropped.
	Sales []PriceRecord

	// OldestDate is the minimum date across all entries of the page,
	// including filtered ones. Empty when no entry carried a date.
	OldestDate string

	// Size is the number of entries before filtering. Used for the
	// short-page termination check.
	Size int
}

// tokenPrice is one tokenPrices element. Every field is optional on the
// wire, so pointers keep "absent" distinguishable from zero values.
type tokenPrice struct {
	Amounts *struct {
		UsdCents *float64 `json:"usdCents"`
	} `json:"amounts"`
	Date *string `json:"date"`
	Deal *struct {
		ID *string `json:"id"`
	} `json:"deal"`
}

type tokensField struct {
	TokenPrices []tokenPrice `json:"tokenPrices"`
}

// ParseSingle extracts the tokenPrices page from a single-player response
// body. A null or missing data/tokens field yields an empty page.
func ParseSingle(data json.RawMessage) (Page, error) {
	if len(data) == 0 {
		return Page{}, nil
	}

	var body struct {
		Tokens *tokensField `json:"tokens"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return Page{}, fmt.Errorf("decode tokens field: %w", err)
	}
	if body.Tokens == nil {
		return Page{}, nil
	}

	return buildPage(body.Tokens.TokenPrices), nil
}

// ParseBatch extracts one page per alias from a batched response body. The
// returned slice has length n and is positionally matched to the slugs the
// request was built from; a missing alias yields an empty page at its index.
func ParseBatch(data json.RawMessage, n int) ([]Page, error) {
	pages := make([]Page, n)
	if len(data) == 0 {
		return pages, nil
	}

	var body map[string]*tokensField
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("decode aliased fields: %w", err)
	}

	for i := 0; i < n; i++ {
		tokens := body[Alias(i)]
		if tokens == nil {
			continue
		}
		pages[i] = buildPage(tokens.TokenPrices)
	}
	return pages, nil
}

// buildPage filters entries down to completed auction sales (deal.id
// present) and tracks the oldest date across all entries for cursor use.
func buildPage(entries []tokenPrice) Page {
	page := Page{Size: len(entries)}

	for _, tp := range entries {
		if tp.Deal != nil && tp.Deal.ID != nil && *tp.Deal.ID != "" {
			if tp.Amounts != nil && tp.Amounts.UsdCents != nil && tp.Date != nil {
				page.Sales = append(page.Sales, PriceRecord{
					Date:      *tp.Date,
					AmountUSD: *tp.Amounts.UsdCents / 100.0,
				})
			}
		}

		if tp.Date != nil && *tp.Date != "" {
			if page.OldestDate == "" || *tp.Date < page.OldestDate {
				page.OldestDate = *tp.Date
			}
		}
	}
	return page
}
