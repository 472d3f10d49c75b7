// Package ui renders the client's catalog and transfer activity on a terminal.
// It observes the protocol layer and never drives it.
package ui

import (
	"fmt"
	"io"
	"nfinite/domain"
	"nfinite/domain/protocol"
	"sync"
	"sync/atomic"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

type Terminal struct {
	mu        sync.Mutex
	out       io.Writer
	colours   bool
	quiet     bool
	up, down  atomic.Int64
	lastShown domain.Direction
}

// NewTerminal writes to out. With quiet set, transfer activity is only counted.
func NewTerminal(out io.Writer, colours, quiet bool) *Terminal {
	return &Terminal{out: out, colours: colours, quiet: quiet}
}

func (t *Terminal) OnTransferActivity(direction domain.Direction) {
	switch direction {
	case domain.Upload:
		t.up.Add(1)
	case domain.Download:
		t.down.Add(1)
	}
	if t.quiet {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastShown = direction
	fmt.Fprintf(t.out, "\r%s %d  %s %d ", t.paint("▲", color.FgGreen, direction == domain.Upload), t.up.Load(),
		t.paint("▼", color.FgCyan, direction == domain.Download), t.down.Load())
}

func (t *Terminal) OnFileListUpdated(entries []protocol.FileMeta) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastShown != "" {
		fmt.Fprintln(t.out)
		t.lastShown = ""
	}
	t.printCatalog(entries)
}

// PrintCatalog renders the file list as a borderless table.
func (t *Terminal) PrintCatalog(entries []protocol.FileMeta) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.printCatalog(entries)
}

// Frames returns how many frames were sent and received so far.
func (t *Terminal) Frames() (up, down int64) {
	return t.up.Load(), t.down.Load()
}

func (t *Terminal) printCatalog(entries []protocol.FileMeta) {
	if len(entries) == 0 {
		fmt.Fprintln(t.out, t.paint("no file on the hub yet", color.FgGray, true))
		return
	}
	table := tablewriter.NewWriter(t.out)
	table.SetHeader([]string{"Name", "Modified"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, entry := range entries {
		modified := "-"
		if at, ok := entry.ModifiedAt(); ok {
			modified = at.Local().Format("2006-01-02 15:04:05")
		}
		table.Append([]string{entry.Name, modified})
	}
	table.Render()
}

func (t *Terminal) paint(text string, fg color.Color, highlight bool) string {
	if !t.colours || !highlight {
		return text
	}
	return fg.Render(text)
}
