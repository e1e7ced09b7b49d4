// Package catalog holds the fixed question list and candidate roster for
// the event. Both are immutable once loaded at process start.
package catalog

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/vladicamp/campvote/internal/models"
)

// Catalog is the immutable set of questions and candidates for one event
type Catalog struct {
	EventName  string            `json:"event_name"`
	Questions  []models.Question `json:"questions"`
	Candidates []string          `json:"candidates"`
}

// Default returns the built-in catalog used when no file is supplied
func Default() *Catalog {
	return &Catalog{
		EventName: "Vladicamp 2025",
		Questions: []models.Question{
			{ID: 1, Text: "Never lets go of the microphone"},
			{ID: 2, Text: "Biggest freeloader"},
			{ID: 3, Text: "Hits the hardest"},
			{ID: 4, Text: "Hits the softest"},
			{ID: 5, Text: "Worst aim of the year"},
			{ID: 6, Text: "Most negative"},
			{ID: 7, Text: "Most motivating"},
			{ID: 8, Text: "Funniest"},
			{ID: 9, Text: "Least funny"},
			{ID: 10, Text: "Biggest chicken"},
			{ID: 11, Text: "Contributes absolutely nothing"},
			{ID: 12, Text: "Best excuses"},
			{ID: 13, Text: "Perfect attendance"},
			{ID: 14, Text: "Generates the most chaos"},
			{ID: 15, Text: "Revelation of the year"},
			{ID: 16, Text: "Audio of the year", Kind: models.KindText},
		},
		Candidates: []string{
			"Sergio", "Zinow", "Tincho", "Tomi", "Tanke", "Javo",
			"Rod", "Augu", "Casla", "Jerry", "Emi", "Shone",
			"Pola", "Guai", "Gato", "Fach", "Fran", "Ale Melli",
			"Boris", "Juanma", "Eze", "Tebi",
		},
	}
}

// LoadFile reads a catalog from a JSON file and validates it
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the catalog invariants: unique question ids, non-blank
// question texts, known kinds, and a non-empty candidate roster
func (c *Catalog) Validate() error {
	if len(c.Questions) == 0 {
		return fmt.Errorf("catalog has no questions")
	}
	if len(c.Candidates) == 0 {
		return fmt.Errorf("catalog has no candidates")
	}

	seen := make(map[int]bool, len(c.Questions))
	for _, q := range c.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %d has blank text", q.ID)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = true
		switch q.Kind {
		case "", models.KindSelect, models.KindText:
		default:
			return fmt.Errorf("question %d has unknown kind %q", q.ID, q.Kind)
		}
	}

	for _, name := range c.Candidates {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("catalog has a blank candidate name")
		}
	}
	return nil
}

// Question returns the question with the given id
func (c *Catalog) Question(id int) (models.Question, bool) {
	for _, q := range c.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return models.Question{}, false
}

// Shuffled returns a randomized copy of the candidate roster (Fisher-Yates)
func (c *Catalog) Shuffled() []string {
	out := make([]string, len(c.Candidates))
	copy(out, c.Candidates)
	for i := len(out) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
