package player

import (
	"sort"
	"sync"

	"github.com/ytget/ytcipher/youtube/cipher"
)

// Cache maps script identities to ciphers. Entries are never replaced or
// evicted; the first stored cipher for a key wins.
type Cache struct {
	m sync.Map // string -> *cipher.Cipher
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cipher stored for identity.
func (c *Cache) Get(identity string) (*cipher.Cipher, bool) {
	v, ok := c.m.Load(identity)
	if !ok {
		return nil, false
	}
	return v.(*cipher.Cipher), true
}

// Store records ci under identity unless a cipher is already present, and
// returns the cipher that is kept. A nil ci is stored as the empty cipher.
func (c *Cache) Store(identity string, ci *cipher.Cipher) *cipher.Cipher {
	if ci == nil {
		ci = cipher.NewCipher()
	}
	v, _ := c.m.LoadOrStore(identity, ci)
	return v.(*cipher.Cipher)
}

// Len returns the number of cached identities.
func (c *Cache) Len() int {
	n := 0
	c.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Keys returns the cached identities in sorted order.
func (c *Cache) Keys() []string {
	var keys []string
	c.m.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}
