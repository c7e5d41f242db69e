package player

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ytget/ytcipher/youtube/cipher"
)

// LoadPolicy decides which cache misses may load concurrently. Do runs load
// for key inside the policy's critical section and returns its result.
// Implementations must release the section on every return path.
type LoadPolicy interface {
	Do(key string, load func() (*cipher.Cipher, error)) (*cipher.Cipher, error)
}

// Policy names accepted by ParsePolicy.
const (
	PolicyGlobal = "global"
	PolicyPerKey = "per-key"
)

// GlobalLock allows a single load in flight across all keys. A miss on one
// script blocks misses on every other script until it finishes.
type GlobalLock struct {
	mu sync.Mutex
}

// Do implements LoadPolicy.
func (g *GlobalLock) Do(_ string, load func() (*cipher.Cipher, error)) (*cipher.Cipher, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return load()
}

// PerKey collapses concurrent loads of the same key into one call and lets
// different keys load in parallel.
type PerKey struct {
	group singleflight.Group
}

// Do implements LoadPolicy.
func (p *PerKey) Do(key string, load func() (*cipher.Cipher, error)) (*cipher.Cipher, error) {
	v, err, _ := p.group.Do(key, func() (any, error) {
		return load()
	})
	if err != nil {
		return nil, err
	}
	return v.(*cipher.Cipher), nil
}

// ParsePolicy returns a new policy by name. An empty name selects PerKey.
func ParsePolicy(name string) (LoadPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyPerKey, "perkey":
		return &PerKey{}, nil
	case PolicyGlobal:
		return &GlobalLock{}, nil
	default:
		return nil, fmt.Errorf("unknown load policy %q (want %s or %s)", name, PolicyGlobal, PolicyPerKey)
	}
}
