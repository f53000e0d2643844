// Package runner drives one full fetch run: roster positions in fixed
// order, batch-first fetching with per-player fallback, history merge and
// persist per player, one CSV table per position, and a completion marker.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/soraredata/auction-tracker/internal/roster"
	"github.com/soraredata/auction-tracker/pkg/fetch"
	"github.com/soraredata/auction-tracker/pkg/graphql"
	"github.com/soraredata/auction-tracker/pkg/history"
	"github.com/soraredata/auction-tracker/pkg/logging"
	"github.com/soraredata/auction-tracker/pkg/output"
)

// Stats are the run-scoped counters. They are returned rather than kept in
// package state so every run owns its numbers.
type Stats struct {
	RunID      string
	APICalls   int
	Players    int
	NewRecords int
	Elapsed    time.Duration
}

// RequestCounter reports network round-trips performed. Satisfied by
// *client.Client.
type RequestCounter interface {
	Requests() int
}

// Config wires the runner's collaborators.
type Config struct {
	Roster    roster.Roster
	Batch     *fetch.BatchFetcher
	Paging    *fetch.PagingFetcher
	Store     *history.Store
	Sink      output.Sink
	Requests  RequestCounter
	GroupSize int

	// MarkerDir receives the run-completion marker, usually the same
	// directory the sink writes into.
	MarkerDir string
}

// Runner orchestrates a run. Processing is strictly sequential; the only
// suspension points are the throttler waits inside the fetchers.
type Runner struct {
	cfg    Config
	logger zerolog.Logger
}

// New creates a runner.
func New(cfg Config) *Runner {
	if cfg.GroupSize < 1 {
		cfg.GroupSize = 1
	}
	return &Runner{cfg: cfg, logger: logging.NewLogger("runner")}
}

// Run processes every position of the roster and returns the run counters.
// Transport failures and corrupt history files abort the run; everything
// already persisted stays intact and the next run resumes cleanly.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()
	stats := &Stats{RunID: uuid.NewString()}
	logger := r.logger.With().Str("run_id", stats.RunID).Logger()

	logger.Info().Int("players", r.cfg.Roster.Size()).Msg("Starting fetch run")

	for _, pos := range roster.Positions {
		players := r.cfg.Roster[pos]
		if len(players) == 0 {
			continue
		}

		table := output.Table{Category: pos}

		for _, group := range partition(players, r.cfg.GroupSize) {
			outcomes, err := r.fetchGroup(ctx, group, logger)
			if err != nil {
				return stats, err
			}

			for _, p := range group {
				row, added, err := r.processPlayer(p, outcomes[p.Slug].Records, logger)
				if err != nil {
					return stats, err
				}
				stats.Players++
				stats.NewRecords += added
				table.Rows = append(table.Rows, row)
			}
		}

		if err := r.cfg.Sink.WriteTable(table); err != nil {
			return stats, fmt.Errorf("write %s table: %w", pos, err)
		}
	}

	if err := output.WriteRunMarker(r.cfg.MarkerDir, time.Now()); err != nil {
		return stats, err
	}

	if r.cfg.Requests != nil {
		stats.APICalls = r.cfg.Requests.Requests()
	}
	stats.Elapsed = time.Since(start)

	logger.Info().
		Int("players", stats.Players).
		Int("api_calls", stats.APICalls).
		Int("new_records", stats.NewRecords).
		Dur("elapsed", stats.Elapsed).
		Msg("Fetch run complete")
	return stats, nil
}

// fetchGroup tries one batched request first. If the batch is rejected by
// the complexity budget, the whole group is re-fetched one player at a time
// through the paginating path.
func (r *Runner) fetchGroup(ctx context.Context, group []roster.Entity, logger zerolog.Logger) (map[string]fetch.Outcome, error) {
	slugs := make([]string, len(group))
	for i, p := range group {
		slugs[i] = p.Slug
	}

	outcomes, err := r.cfg.Batch.FetchGroup(ctx, slugs)
	if err != nil {
		return nil, err
	}

	if !anyRejected(outcomes) {
		return outcomes, nil
	}

	logger.Info().
		Int("players", len(group)).
		Msg("Falling back to per-player pagination")

	outcomes = make(map[string]fetch.Outcome, len(group))
	for _, slug := range slugs {
		records, err := r.cfg.Paging.FetchAll(ctx, slug)
		if err != nil {
			return nil, err
		}
		outcomes[slug] = fetch.Outcome{Records: records}
	}
	return outcomes, nil
}

// processPlayer merges the fetched records into the player's durable history
// and builds the table row. A corrupt history file aborts the run; a failed
// persist is logged and does not block the remaining players.
func (r *Runner) processPlayer(p roster.Entity, records []graphql.PriceRecord, logger zerolog.Logger) (output.Row, int, error) {
	h, err := r.cfg.Store.Load(p.Slug)
	if err != nil {
		return output.Row{}, 0, fmt.Errorf("load history for %s: %w", p.Slug, err)
	}

	added := h.Merge(records)

	if err := r.cfg.Store.Persist(p.Slug, h); err != nil {
		logger.Error().Err(err).Str("player", p.Slug).Msg("Failed to persist history")
	}

	logger.Info().
		Str("player", p.Slug).
		Int("fetched", len(records)).
		Int("new", added).
		Int("total", len(h)).
		Msg("Player processed")

	return output.Row{
		Name:   p.DisplayName(),
		Team:   p.Team,
		Prices: h.OrderedPrices(),
	}, added, nil
}

func anyRejected(outcomes map[string]fetch.Outcome) bool {
	for _, o := range outcomes {
		if o.Rejected {
			return true
		}
	}
	return false
}

// partition splits players into consecutive groups of at most size.
func partition(players []roster.Entity, size int) [][]roster.Entity {
	var groups [][]roster.Entity
	for start := 0; start < len(players); start += size {
		end := start + size
		if end > len(players) {
			end = len(players)
		}
		groups = append(groups, players[start:end])
	}
	return groups
}
