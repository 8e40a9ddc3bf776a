package oauth

import (
	"net/url"
	"sync"
)

// Geometry is the size hint passed when opening a popup.
type Geometry struct {
	Width  int
	Height int
}

var DefaultGeometry = Geometry{Width: 500, Height: 600}

// Popup is a handle to an opened authorization window.
type Popup interface {
	Closed() bool
	Close()
}

// Opener opens a window at the given URL. A nil popup with a nil error means
// the environment refused to open one (popup blocked).
type Opener interface {
	Open(url string, g Geometry) (Popup, error)
}

// Location is the current address of the callback context. Replace rewrites
// the visible URL without adding a history entry.
type Location interface {
	Current() *url.URL
	Replace(u *url.URL)
}

// PageLocation is an in-memory Location, standing in for a window location in
// non-browser contexts such as tests and server-side fragment relays.
type PageLocation struct {
	mu sync.Mutex
	u  *url.URL
}

func NewPageLocation(u *url.URL) *PageLocation {
	cp := *u
	return &PageLocation{u: &cp}
}

func (l *PageLocation) Current() *url.URL {
	l.mu.Lock()
	defer l.mu.Unlock()

	cp := *l.u
	return &cp
}

func (l *PageLocation) Replace(u *url.URL) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cp := *u
	l.u = &cp
}
