package fetch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/soraredata/auction-tracker/pkg/graphql"
	"github.com/soraredata/auction-tracker/pkg/logging"
	"github.com/soraredata/auction-tracker/pkg/throttle"
)

// BatchFetcher fetches the most recent sales for several players in one
// aliased request. A batched query cannot carry a date-window cursor, so it
// returns at most one page per player.
type BatchFetcher struct {
	client   Executor
	throttle *throttle.Throttler
	pageSize int
	logger   zerolog.Logger
}

// NewBatchFetcher creates a batch fetcher.
func NewBatchFetcher(c Executor, th *throttle.Throttler, pageSize int) *BatchFetcher {
	if pageSize <= 0 || pageSize > graphql.MaxPageSize {
		pageSize = graphql.MaxPageSize
	}
	return &BatchFetcher{
		client:   c,
		throttle: th,
		pageSize: pageSize,
		logger:   logging.NewLogger("batch-fetcher"),
	}
}

// FetchGroup issues one batched request covering slugs. On a complexity
// budget rejection every slug receives the rejection sentinel, so the group
// either fully succeeds or fully falls back — never a mix. Transport
// failures propagate as errors.
func (f *BatchFetcher) FetchGroup(ctx context.Context, slugs []string) (map[string]Outcome, error) {
	f.throttle.Wait()

	resp, err := f.client.Execute(ctx, "batch", graphql.Batch(slugs, f.pageSize))
	if err != nil {
		return nil, err
	}

	outcomes := make(map[string]Outcome, len(slugs))

	if resp.BudgetRejected() {
		f.logger.Info().
			Int("players", len(slugs)).
			Msg("Batch rejected by complexity budget, group will fall back")
		for _, slug := range slugs {
			outcomes[slug] = Outcome{Rejected: true}
		}
		return outcomes, nil
	}

	pages, err := graphql.ParseBatch(resp.Data, len(slugs))
	if err != nil {
		return nil, fmt.Errorf("parse batch response: %w", err)
	}

	for i, slug := range slugs {
		outcomes[slug] = Outcome{Records: pages[i].Sales}
	}
	return outcomes, nil
}
