// internal/lobby/registry.go
package lobby

import (
	"crypto/rand"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jason-s-yu/truthorlie/internal/topic"
	"github.com/sirupsen/logrus"
)

const (
	// CodeLength is the number of characters in a lobby code.
	CodeLength = 4
	// CodeChars is the alphabet lobby codes are drawn from.
	CodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Registry holds the live lobbies of one process, keyed by code.
// It provides thread-safe creation, lookup and removal.
type Registry struct {
	mu      sync.Mutex        // Protects access to the lobbies map.
	lobbies map[string]*Lobby // Map of normalized code to Lobby.

	seq     uint64
	created atomic.Int64 // lobbies created since start, never reset

	newCode func() string
	topics  topic.Provider
	now     func() time.Time
	log     logrus.FieldLogger
}

// Option configures a Registry.
type Option func(*Registry)

// WithCodeGenerator replaces the random code generator. Used by tests to force collisions.
func WithCodeGenerator(fn func() string) Option {
	return func(r *Registry) { r.newCode = fn }
}

// WithTopics sets the topic provider handed to new lobbies.
func WithTopics(p topic.Provider) Option {
	return func(r *Registry) { r.topics = p }
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Registry) { r.log = l }
}

// WithClock sets the time source for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry initializes and returns an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		lobbies: make(map[string]*Lobby),
		newCode: GenerateCode,
		topics:  topic.NewRandomProvider(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		silent := logrus.New()
		silent.SetLevel(logrus.PanicLevel)
		r.log = silent
	}
	return r
}

// GenerateCode returns a random lobby code.
func GenerateCode() string {
	code := make([]byte, CodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(CodeChars))))
		if err != nil {
			panic(err)
		}
		code[i] = CodeChars[n.Int64()]
	}
	return string(code)
}

// NormalizeCode maps user input onto the registry key space.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create opens a new lobby hosted by hostID. A user may host at most one live lobby.
func (r *Registry) Create(hostID string) (*Lobby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.lobbies {
		if l.HostID == hostID {
			return nil, newError(KindAlreadyHosting, l.Code)
		}
	}

	code := NormalizeCode(r.newCode())
	for {
		if _, taken := r.lobbies[code]; !taken {
			break
		}
		code = NormalizeCode(r.newCode())
	}

	r.seq++
	l := newLobby(code, hostID, r.seq, r.topics, r.now())
	r.lobbies[code] = l
	r.created.Add(1)

	r.log.WithFields(logrus.Fields{"lobby": code, "host": hostID}).Info("lobby created")
	return l, nil
}

// Find returns the live lobby with the given code, case-insensitively.
func (r *Registry) Find(code string) (*Lobby, error) {
	code = NormalizeCode(code)
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lobbies[code]
	if !ok {
		return nil, newError(KindLobbyNotFound, code)
	}
	return l, nil
}

// FindByMember returns the lobby userID belongs to. A hosted lobby wins;
// otherwise the oldest lobby the user joined is returned.
func (r *Registry) FindByMember(userID string) (*Lobby, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found *Lobby
	for _, l := range r.lobbies {
		if l.HostID == userID {
			return l, nil
		}
		if !l.Has(userID) {
			continue
		}
		if found == nil || l.seq < found.seq {
			found = l
		}
	}
	if found == nil {
		return nil, newError(KindNotInLobby, "")
	}
	return found, nil
}

// Remove deletes the lobby with the given code. The code becomes reusable.
func (r *Registry) Remove(code string) {
	code = NormalizeCode(code)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lobbies[code]; ok {
		delete(r.lobbies, code)
		r.log.WithField("lobby", code).Info("lobby removed")
	}
}

// Len is the number of live lobbies.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lobbies)
}

// Created is the number of lobbies created since the registry was built.
func (r *Registry) Created() int64 {
	return r.created.Load()
}
