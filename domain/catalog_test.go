package domain

import (
	"nfinite/domain/protocol"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatalog_ReplaceIsWholesale(t *testing.T) {
	req := require.New(t)
	catalog := NewCatalog()

	// Given a first file list
	catalog.Replace([]protocol.FileMeta{{Name: "a.txt"}, {Name: "b.txt"}})
	req.Equal(2, catalog.Len())

	// When a second one arrives
	catalog.Replace([]protocol.FileMeta{{Name: "c.txt"}})

	// Then nothing of the first survives
	req.False(catalog.Contains("a.txt"))
	req.True(catalog.Contains("c.txt"))
	req.Equal([]protocol.FileMeta{{Name: "c.txt"}}, catalog.Entries())
}

func TestCatalog_EntriesAreCopies(t *testing.T) {
	req := require.New(t)
	source := []protocol.FileMeta{{Name: "a.txt"}}
	catalog := NewCatalog()
	catalog.Replace(source)

	source[0].Name = "changed"
	entries := catalog.Entries()
	entries[0].Name = "changed too"

	req.True(catalog.Contains("a.txt"))
}
