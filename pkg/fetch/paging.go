// Package fetch implements the two fetch paths for auction history: cursor
// paginated single-player fetching and batched multi-player fetching with
// uniform fallback on complexity-budget rejection.
package fetch

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/soraredata/auction-tracker/pkg/graphql"
	"github.com/soraredata/auction-tracker/pkg/logging"
	"github.com/soraredata/auction-tracker/pkg/throttle"
)

// Outcome is the result of fetching one player's recent sales: either the
// records (possibly none) or the budget-rejection sentinel, never both.
type Outcome struct {
	Records  []graphql.PriceRecord
	Rejected bool
}

// PagingFetcher fetches a single player's full auction history by paging
// backwards through time with a date-window cursor.
type PagingFetcher struct {
	client   Executor
	throttle *throttle.Throttler
	pageSize int
	logger   zerolog.Logger
}

// Executor posts one GraphQL request. Satisfied by *client.Client.
type Executor interface {
	Execute(ctx context.Context, kind string, req graphql.Request) (*graphql.Response, error)
}

// NewPagingFetcher creates a paging fetcher. pageSize is capped at the
// provider maximum by the query builder.
func NewPagingFetcher(c Executor, th *throttle.Throttler, pageSize int) *PagingFetcher {
	if pageSize <= 0 || pageSize > graphql.MaxPageSize {
		pageSize = graphql.MaxPageSize
	}
	return &PagingFetcher{
		client:   c,
		throttle: th,
		pageSize: pageSize,
		logger:   logging.NewLogger("paging-fetcher"),
	}
}

// FetchAll returns all completed auction sales for slug, most recent first.
// Pagination stops on budget rejection (accumulated records remain valid),
// on an empty or short page, when the next cursor is absent or fails to
// strictly decrease, or when the stall guard trips. Transport failures
// propagate as errors.
func (f *PagingFetcher) FetchAll(ctx context.Context, slug string) ([]graphql.PriceRecord, error) {
	var all []graphql.PriceRecord
	var toCursor, prevCursor string

	for page := 1; ; page++ {
		f.throttle.Wait()

		resp, err := f.client.Execute(ctx, "single", graphql.Single(slug, f.pageSize, toCursor))
		if err != nil {
			return nil, err
		}

		// Budget rejection ends pagination gracefully; whatever has been
		// accumulated so far is a valid partial result.
		if resp.BudgetRejected() {
			f.logger.Debug().
				Str("player", slug).
				Int("page", page).
				Int("records", len(all)).
				Msg("Pagination stopped by complexity budget")
			break
		}

		parsed, err := graphql.ParseSingle(resp.Data)
		if err != nil {
			return nil, err
		}

		all = append(all, parsed.Sales...)

		if parsed.Size == 0 {
			break
		}
		if parsed.Size < f.pageSize {
			// Short page means the end of the data was reached.
			break
		}

		next := parsed.OldestDate
		if next == "" {
			break
		}
		if toCursor != "" && next >= toCursor {
			// Cursors must strictly decrease across pages.
			f.logger.Warn().
				Str("player", slug).
				Str("cursor", next).
				Msg("Cursor failed to decrease, stopping pagination")
			break
		}
		if next == prevCursor {
			// Stall guard: the same cursor twice in a row would loop.
			break
		}

		prevCursor = toCursor
		toCursor = next
	}

	return all, nil
}
