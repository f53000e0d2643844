// Package graphql builds the Sorare GraphQL requests for Limited auction
// price history and parses the returned pages into typed records.
package graphql

import (
	"fmt"
	"strings"
)

// MaxPageSize is the largest page the API accepts for tokenPrices.
const MaxPageSize = 20

// singleQuery fetches the most recent Limited auction prices for one player,
// optionally bounded above by the to cursor. Date-windowing and batching are
// mutually exclusive: combining them exceeds the unauthenticated complexity
// budget.
const singleQuery = `query GetLimitedAuctionHistory($playerSlug: String!, $first: Int, $to: ISO8601DateTime) {
  tokens {
    tokenPrices(
      playerSlug: $playerSlug
      rarity: limited
      first: $first
      to: $to
    ) {
      amounts {
        usdCents
      }
      date
      deal {
        ... on TokenAuction {
          id
        }
      }
    }
  }
}`

// Request is the JSON payload POSTed to the GraphQL endpoint.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Single builds a request for up to first most-recent records of one player.
// A non-empty to cursor bounds the page above, requesting strictly older
// records. first is capped at MaxPageSize.
func Single(slug string, first int, to string) Request {
	if first <= 0 || first > MaxPageSize {
		first = MaxPageSize
	}

	vars := map[string]any{
		"playerSlug": slug,
		"first":      first,
	}
	if to != "" {
		vars["to"] = to
	}

	return Request{Query: singleQuery, Variables: vars}
}

// Alias returns the response alias for the i-th slug of a batch request.
// Batch responses are matched back to slugs positionally through this
// function, never through map iteration order.
func Alias(i int) string {
	return fmt.Sprintf("p%d", i)
}

// Batch builds one request containing an aliased tokens sub-query per slug,
// in slug order. Slugs and page size are inlined because the batched query
// carries no variables. No to cursor is supported in batch mode.
func Batch(slugs []string, first int) Request {
	if first <= 0 || first > MaxPageSize {
		first = MaxPageSize
	}

	var b strings.Builder
	b.WriteString("query GetLimitedAuctionHistoryBatch {\n")
	for i, slug := range slugs {
		fmt.Fprintf(&b, "  %s: tokens {\n", Alias(i))
		fmt.Fprintf(&b, "    tokenPrices(playerSlug: %q, rarity: limited, first: %d) {\n", slug, first)
		b.WriteString("      amounts {\n        usdCents\n      }\n")
		b.WriteString("      date\n")
		b.WriteString("      deal {\n        ... on TokenAuction {\n          id\n        }\n      }\n")
		b.WriteString("    }\n  }\n")
	}
	b.WriteString("}")

	return Request{Query: b.String()}
}
