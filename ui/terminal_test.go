package ui

import (
	"bytes"
	"nfinite/domain"
	"nfinite/domain/protocol"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTerminal_PrintCatalog(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	term := NewTerminal(&out, false, true)

	term.PrintCatalog([]protocol.FileMeta{
		{Name: "notes.txt", DateModified: "1700000000000"},
		{Name: "raw.bin"},
	})

	text := out.String()
	req.Contains(text, "NAME")
	req.Contains(text, "notes.txt")
	req.Contains(text, "raw.bin")
	req.Contains(text, "-")
}

func TestTerminal_EmptyCatalog(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer

	NewTerminal(&out, false, false).OnFileListUpdated(nil)

	req.Equal("no file on the hub yet\n", out.String())
}

func TestTerminal_CountsActivity(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	term := NewTerminal(&out, false, false)

	term.OnTransferActivity(domain.Upload)
	term.OnTransferActivity(domain.Upload)
	term.OnTransferActivity(domain.Download)

	up, down := term.Frames()
	req.Equal(int64(2), up)
	req.Equal(int64(1), down)
	lines := strings.Split(out.String(), "\r")
	req.Equal("▲ 2  ▼ 1 ", lines[len(lines)-1])
}

func TestTerminal_QuietOnlyCounts(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	term := NewTerminal(&out, true, true)

	term.OnTransferActivity(domain.Download)

	req.Empty(out.String())
	_, down := term.Frames()
	req.Equal(int64(1), down)
}
