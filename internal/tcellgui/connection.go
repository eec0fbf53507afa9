package tcellgui

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/tbung/wezterm/internal/spawn"
	"github.com/tbung/wezterm/internal/termwindow"
)

// closeGrace is how long Run waits for a replacement window after the last
// one closed. It covers the delay before a window is recreated after
// context loss.
const closeGrace = time.Second

// ErrWindowOpen is returned when a second window is requested while one is
// still open: a screen hosts a single window.
var ErrWindowOpen = errors.New("a window is already open on this screen")

// Connection hosts windows on a tcell screen and runs their event loop.
type Connection struct {
	screen tcell.Screen
	exec   *spawn.Executor
	logger *log.Logger

	window *Window

	quit     chan struct{}
	quitOnce sync.Once
}

// NewConnection creates a connection on an initialized screen. exec is
// the executor of the windows it will host.
func NewConnection(screen tcell.Screen, exec *spawn.Executor, logger *log.Logger) *Connection {
	if logger == nil {
		logger = log.Default()
	}
	return &Connection{
		screen: screen,
		exec:   exec,
		logger: logger.With("component", "tcellgui"),
		quit:   make(chan struct{}),
	}
}

// NewWindow creates the window for tw. The requested size is ignored: the
// window covers the screen, and tw learns the real size through a resize.
func (c *Connection) NewWindow(class string, width, height int, tw *termwindow.TermWindow) (termwindow.WindowOps, error) {
	if c.window != nil && !c.window.closed {
		return nil, ErrWindowOpen
	}
	w := &Window{
		conn:    c,
		screen:  c.screen,
		tw:      tw,
		logger:  c.logger.With("class", class),
		class:   class,
		painter: painter{screen: c.screen},
		dirty:   true,
	}
	c.window = w
	c.logger.Debug("window created", "class", class, "requested_width", width, "requested_height", height)

	if err := c.exec.Post(func() { tw.Resize(w.dimensions()) }); err != nil {
		return nil, err
	}
	return w, nil
}

func (c *Connection) HideApplication() {
	if c.window != nil {
		c.window.Hide()
	}
}

func (c *Connection) TerminateMessageLoop() {
	c.quitOnce.Do(func() { close(c.quit) })
}

func (c *Connection) windowClosed(w *Window) {
	c.logger.Debug("window closed", "mux_window", uint64(w.activeMuxWindow()))
	if c.window == w {
		c.window = nil
	}
}

// Run drives the hosted windows until the message loop is terminated, ctx
// is done, or no window has been open for a short grace period. It must be
// the only goroutine touching the windows.
func (c *Connection) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	events := make(chan tcell.Event, 16)
	go c.readEvents(events, stop)

	var idle <-chan time.Time
	for {
		if c.window != nil {
			c.window.paint()
			idle = nil
		} else if idle == nil {
			idle = time.After(closeGrace)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.quit:
			return nil
		case <-idle:
			c.logger.Debug("no window left")
			return nil
		case <-c.exec.Ready():
			c.exec.RunPending()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if c.window != nil {
				c.window.handle(ev)
			}
		}
	}
}

// readEvents forwards screen events until the screen is finalized or Run
// returns.
func (c *Connection) readEvents(out chan<- tcell.Event, stop <-chan struct{}) {
	defer close(out)
	for {
		ev := c.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-stop:
			return
		}
	}
}
