// Package roster loads the fixed player roster, grouped by position.
package roster

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Positions is the fixed category order for fetching and reporting.
var Positions = []string{"gk", "df", "mf", "fw"}

// Entity is one roster entry: the player's API slug and the team tag shown
// next to the name in the output tables. Roster entries are read-only input.
type Entity struct {
	Slug string `yaml:"slug"`
	Team string `yaml:"team"`
}

// DisplayName builds the table name for the player, e.g. "Celentano (CIN)"
// from the slug "roman-celentano" and team "CIN".
func (e Entity) DisplayName() string {
	parts := strings.Split(e.Slug, "-")
	last := parts[len(parts)-1]
	if last != "" {
		last = strings.ToUpper(last[:1]) + strings.ToLower(last[1:])
	}
	return fmt.Sprintf("%s (%s)", last, e.Team)
}

// Roster maps a position to its players, preserving file order.
type Roster map[string][]Entity

// Load reads a YAML roster file of the form:
//
//	gk:
//	  - slug: roman-celentano
//	    team: CIN
func Load(path string) (Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}

	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse roster yaml: %w", err)
	}

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("validate roster: %w", err)
	}
	return r, nil
}

// Validate checks that every position is known and every entry has a slug.
func (r Roster) Validate() error {
	known := make(map[string]bool, len(Positions))
	for _, p := range Positions {
		known[p] = true
	}

	for pos, entities := range r {
		if !known[pos] {
			return fmt.Errorf("unknown position %q", pos)
		}
		for i, e := range entities {
			if e.Slug == "" {
				return fmt.Errorf("position %s entry %d: slug is required", pos, i)
			}
		}
	}
	return nil
}

// Size returns the total number of players across all positions.
func (r Roster) Size() int {
	total := 0
	for _, entities := range r {
		total += len(entities)
	}
	return total
}
