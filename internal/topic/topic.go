// internal/topic/topic.go
package topic

import (
	"math/rand"
	"sync"
	"time"
)

// Catalog is the fixed list of topics a round can be about.
var Catalog = []string{
	"Your childhood",
	"Food & Drinks",
	"Travel & Places",
	"Relationships",
	"Movies & TV Shows",
	"Music & Entertainment",
	"Books & Literature",
	"Sports & Hobbies",
	"Life Lessons",
	"Embarrassing Moments",
	"Dreams & Aspirations",
	"Animals",
}

// Provider hands out topics for new rounds.
type Provider interface {
	Next() string
}

// RandomProvider draws uniformly from a topic list. Safe for concurrent use.
type RandomProvider struct {
	mu     sync.Mutex
	rng    *rand.Rand
	topics []string
}

// NewRandomProvider returns a provider over Catalog seeded from the clock.
func NewRandomProvider() *RandomProvider {
	return NewSeededProvider(time.Now().UnixNano(), Catalog)
}

// NewSeededProvider returns a deterministic provider, used by tests.
// An empty topic list falls back to Catalog.
func NewSeededProvider(seed int64, topics []string) *RandomProvider {
	if len(topics) == 0 {
		topics = Catalog
	}
	return &RandomProvider{
		rng:    rand.New(rand.NewSource(seed)),
		topics: topics,
	}
}

// Next returns a pseudo-random topic.
func (p *RandomProvider) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.topics[p.rng.Intn(len(p.topics))]
}

// Fixed always returns the same topic.
type Fixed string

func (f Fixed) Next() string { return string(f) }
