// Package catalog holds the static food nutrition table used to price
// detected food labels.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/platewise/backend/internal/models"
)

// DefaultCalories is charged for every label the catalog does not know.
// Unknown items contribute no macros.
const DefaultCalories = 100.0

// Entry is the nutrition record for one food label, per serving.
type Entry struct {
	Name     string
	Calories float64
	Fats     float64
	Carbs    float64
	Proteins float64
}

// Totals is the sum over a list of labels.
type Totals struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fats     float64
}

// Macros returns the macro breakdown stored alongside a meal.
func (t Totals) Macros() models.Macros {
	return models.Macros{Protein: t.Protein, Carbs: t.Carbs, Fats: t.Fats}
}

// Catalog is immutable after construction and safe for concurrent reads.
type Catalog struct {
	entries  map[string]Entry
	degraded bool
}

type rawEntry struct {
	Name     string     `json:"name"`
	Calories flexNumber `json:"calories"`
	Fats     flexNumber `json:"Fats"`
	Carbs    flexNumber `json:"Carbs"`
	Proteins flexNumber `json:"Proteins"`
}

// flexNumber accepts both JSON numbers and numeric strings.
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*f = flexNumber(v)
	return nil
}

// Load reads the dataset at path. A missing file is not an error: the
// catalog comes up empty, every label falls back to DefaultCalories, and
// the condition is logged.
func Load(path string, logger *slog.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("nutrition dataset not found, running in degraded mode", "path", path)
		return &Catalog{entries: map[string]Entry{}, degraded: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read nutrition dataset: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	logger.Info("nutrition dataset loaded", "path", path, "entries", c.Len())
	return c, nil
}

// Parse builds a catalog from the JSON array form of the dataset.
func Parse(data []byte) (*Catalog, error) {
	var raw []rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse nutrition dataset: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		entries = append(entries, Entry{
			Name:     r.Name,
			Calories: float64(r.Calories),
			Fats:     float64(r.Fats),
			Carbs:    float64(r.Carbs),
			Proteins: float64(r.Proteins),
		})
	}
	return New(entries), nil
}

// New builds a catalog from entries. On duplicate names the first wins.
func New(entries []Entry) *Catalog {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		key := strings.ToLower(e.Name)
		if _, ok := c.entries[key]; ok {
			continue
		}
		c.entries[key] = e
	}
	return c
}

// Lookup finds an entry by case-insensitive exact name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	e, ok := c.entries[strings.ToLower(name)]
	return e, ok
}

// Aggregate sums nutrition over labels, charging DefaultCalories for each
// unknown label.
func (c *Catalog) Aggregate(labels []string) Totals {
	var t Totals
	for _, label := range labels {
		e, ok := c.Lookup(label)
		if !ok {
			t.Calories += DefaultCalories
			continue
		}
		t.Calories += e.Calories
		t.Protein += e.Proteins
		t.Carbs += e.Carbs
		t.Fats += e.Fats
	}
	return t
}

// Len returns the number of distinct entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Degraded reports whether the dataset was missing at load time.
func (c *Catalog) Degraded() bool {
	return c.degraded
}
