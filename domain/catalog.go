package domain

import (
	"nfinite/domain/protocol"
	"sync"

	"github.com/samber/lo"
)

// Catalog is the client's view of the files it owns on the hub.
// It is replaced wholesale by every fileList message.
type Catalog struct {
	mu      sync.RWMutex
	entries []protocol.FileMeta
}

func NewCatalog() *Catalog {
	return &Catalog{}
}

func (c *Catalog) Replace(entries []protocol.FileMeta) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append([]protocol.FileMeta(nil), entries...)
}

func (c *Catalog) Entries() []protocol.FileMeta {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]protocol.FileMeta(nil), c.entries...)
}

func (c *Catalog) Contains(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.ContainsBy(c.entries, func(f protocol.FileMeta) bool {
		return f.Name == name
	})
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
