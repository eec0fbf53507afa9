// Package clipboard connects a window to the platform clipboard.
package clipboard

import (
	"sync"
)

// Destination selects which clipboard a copy goes to.
type Destination uint8

const (
	Clipboard Destination = iota
	PrimarySelection
	ClipboardAndPrimarySelection
)

// Source selects which clipboard a paste reads from.
type Source uint8

const (
	SourceClipboard Source = iota
	SourcePrimarySelection
)

// Provider is the platform clipboard. GetContents may invoke the callback
// on any goroutine.
type Provider interface {
	SetContents(dest Destination, text string) error
	GetContents(src Source, cb func(text string, err error))
}

// Cell holds clipboard text fetched asynchronously until the window thread
// picks it up.
type Cell struct {
	mu    sync.Mutex
	text  string
	ready bool
}

// Store records text fetched from the clipboard.
func (c *Cell) Store(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	c.ready = true
}

// Take returns the stored text and empties the cell.
func (c *Cell) Take() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		return "", false
	}
	text := c.text
	c.text, c.ready = "", false
	return text, true
}

// Memory is an in-process clipboard with a separate primary selection.
type Memory struct {
	mu        sync.Mutex
	clipboard string
	primary   string
}

// SetContents implements Provider.
func (m *Memory) SetContents(dest Destination, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch dest {
	case Clipboard:
		m.clipboard = text
	case PrimarySelection:
		m.primary = text
	default:
		m.clipboard = text
		m.primary = text
	}
	return nil
}

// GetContents implements Provider. The callback runs on a new goroutine,
// as platform clipboards do.
func (m *Memory) GetContents(src Source, cb func(string, error)) {
	m.mu.Lock()
	text := m.clipboard
	if src == SourcePrimarySelection {
		text = m.primary
	}
	m.mu.Unlock()
	go cb(text, nil)
}
