// Package catalog holds the loaded country list and draws questions from it.
package catalog

import (
	"math/rand"
	"sync"
	"time"

	"quiz-arena/domain"
	"quiz-arena/errors"
)

const choicesPerQuestion = 4

// Catalog is the question supplier. It starts empty and becomes ready once
// the loader swapped in a usable country list.
//
// Catalog is safe for concurrent use: rooms draw from it in parallel.
type Catalog struct {
	mu        sync.RWMutex
	countries []domain.Country
	rng       *rand.Rand
	rngMu     sync.Mutex
}

func New() *Catalog {
	return &Catalog{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Load replaces the whole country list atomically. Entries without a name
// or flag URL are dropped, and names are deduplicated so that Draw always
// terminates when picking distinct decoys.
func (c *Catalog) Load(countries []domain.Country) {
	usable := make([]domain.Country, 0, len(countries))
	seen := make(map[string]struct{}, len(countries))
	for _, country := range countries {
		if country.Name == "" || country.Flag == "" {
			continue
		}
		if _, dup := seen[country.Name]; dup {
			continue
		}
		seen[country.Name] = struct{}{}
		usable = append(usable, country)
	}
	c.mu.Lock()
	c.countries = usable
	c.mu.Unlock()
}

// Ready reports whether at least one drawable question exists.
func (c *Catalog) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.countries) >= choicesPerQuestion
}

// Size returns the number of loaded countries.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.countries)
}

// Draw picks one correct country and three distinct decoys, shuffled.
// Returns ErrEmptyCatalog while fewer than four distinct names are loaded.
func (c *Catalog) Draw() (domain.Question, error) {
	c.mu.RLock()
	countries := c.countries
	c.mu.RUnlock()

	if len(countries) < choicesPerQuestion {
		return domain.Question{}, errors.ErrEmptyCatalog
	}

	c.rngMu.Lock()
	defer c.rngMu.Unlock()

	correct := countries[c.rng.Intn(len(countries))]
	seen := map[string]struct{}{correct.Name: {}}
	choices := []string{correct.Name}
	for len(choices) < choicesPerQuestion {
		decoy := countries[c.rng.Intn(len(countries))]
		if _, dup := seen[decoy.Name]; dup {
			continue
		}
		seen[decoy.Name] = struct{}{}
		choices = append(choices, decoy.Name)
	}
	c.rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	return domain.Question{
		Correct:   correct,
		Choices:   choices,
		CreatedAt: time.Now().UTC(),
	}, nil
}
