// Package output writes the per-category CSV tables and the run marker that
// the dashboard consumes.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/soraredata/auction-tracker/pkg/logging"
)

// Row is one player's line in a category table. Prices are ordered by
// ascending sale date: the first column is the player's oldest auction.
type Row struct {
	Name   string
	Team   string
	Prices []float64
}

// Table collects the rows of one category in discovery order. Sorting is a
// display concern and happens downstream.
type Table struct {
	Category string
	Rows     []Row
}

// Width returns the maximum price count across the table's rows. It decides
// how many ordinal columns the written file carries.
func (t Table) Width() int {
	width := 0
	for _, r := range t.Rows {
		if len(r.Prices) > width {
			width = len(r.Prices)
		}
	}
	return width
}

// Sink receives one finished table per category.
type Sink interface {
	WriteTable(t Table) error
}

// CSVSink writes each category table as limited_<category>.csv under dir.
type CSVSink struct {
	dir    string
	logger zerolog.Logger
}

// NewCSVSink creates a sink writing into dir, creating it if needed.
func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &CSVSink{dir: dir, logger: logging.NewLogger("csv-sink")}, nil
}

// WriteTable writes one category table. Header: player, team, then one
// ordinal column per observed price up to the category maximum. Rows with
// fewer prices are padded with empty cells.
func (s *CSVSink) WriteTable(t Table) error {
	path := filepath.Join(s.dir, fmt.Sprintf("limited_%s.csv", t.Category))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer file.Close()

	width := t.Width()
	header := []string{"player", "team"}
	for n := 1; n <= width; n++ {
		header = append(header, Ordinal(n))
	}

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range t.Rows {
		cells := make([]string, 0, width+2)
		cells = append(cells, row.Name, row.Team)
		for _, p := range row.Prices {
			cells = append(cells, fmt.Sprintf("%.2f", p))
		}
		for n := len(row.Prices); n < width; n++ {
			cells = append(cells, "")
		}
		if err := w.Write(cells); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	s.logger.Info().
		Str("category", t.Category).
		Int("rows", len(t.Rows)).
		Int("price_columns", width).
		Str("path", path).
		Msg("Wrote category table")
	return nil
}

// Ordinal returns the English ordinal for a 1-based index: 1 -> "1st",
// 2 -> "2nd", 11 -> "11th", 21 -> "21st".
func Ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// RunMarkerName is the file recording the completion time of the most
// recent successful run.
const RunMarkerName = "last_run.txt"

// WriteRunMarker records t as the completion timestamp of the run, in a
// human-readable UTC format.
func WriteRunMarker(dir string, t time.Time) error {
	content := t.UTC().Format("2006-01-02 15:04") + " UTC\n"
	path := filepath.Join(dir, RunMarkerName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write run marker: %w", err)
	}
	return nil
}
