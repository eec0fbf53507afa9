package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/tbung/wezterm/internal/config"
	"github.com/tbung/wezterm/internal/logging"
	"github.com/tbung/wezterm/internal/mux"
	"github.com/tbung/wezterm/internal/mux/memmux"
	"github.com/tbung/wezterm/internal/scripting"
	"github.com/tbung/wezterm/internal/spawn"
	"github.com/tbung/wezterm/internal/tcellgui"
	"github.com/tbung/wezterm/internal/termwindow"
)

var errNotMemmux = errors.New("window does not belong to the in-memory multiplexer")

// session holds the process-wide services shared by every window.
type session struct {
	logger   *log.Logger
	closeLog func()
	store    *config.Store
	mux      *memmux.Mux
	exec     *spawn.Executor
	sched    *spawn.Scheduler
	scripts  *scripting.Engine
}

func newSession(ctx context.Context, opts options) (*session, error) {
	logger, closeLog, err := openLogger(opts)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		closeLog()
		return nil, err
	}

	s := &session{
		logger:   logger,
		closeLog: closeLog,
		store:    config.NewStore(opts.configPath, cfg, logger),
		mux:      memmux.New(),
		exec:     spawn.NewExecutor(logger),
		sched:    spawn.NewScheduler(ctx, logger),
	}
	if cfg.EventScript != "" {
		s.scripts = scripting.New(logger)
		if err := s.scripts.LoadFile(cfg.EventScript); err != nil {
			logger.Error("event script failed to load", "path", cfg.EventScript, "err", err)
		}
	}
	return s, nil
}

func openLogger(opts options) (*log.Logger, func(), error) {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(opts.logLevel)
	if opts.logFile == "" {
		// the terminal belongs to the window
		cfg.Output = io.Discard
		return logging.New(cfg), func() {}, nil
	}
	f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	cfg.Output = f
	return logging.New(cfg), func() { _ = f.Close() }, nil
}

func (s *session) close() {
	s.sched.Shutdown()
	s.exec.Close()
	if s.scripts != nil {
		_ = s.scripts.Close()
	}
	s.closeLog()
}

// watchConfig reloads the store whenever its file changes.
func (s *session) watchConfig() {
	if s.store.Path() == "" {
		return
	}
	w, err := config.NewWatcher(s.store, s.logger)
	if err != nil {
		s.logger.Warn("config changes will not be picked up", "err", err)
		return
	}
	_, err = s.sched.Spawn("config watcher", func(ctx context.Context) error {
		if err := w.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("cannot start config watcher", "err", err)
	}
}

// newWindow creates a multiplexer window with tabs tabs and the terminal
// window showing it.
func (s *session) newWindow(tabs int, conn termwindow.Connection, fonts termwindow.FontConfig) (*termwindow.TermWindow, error) {
	cfg := s.store.Current()
	mw := s.mux.NewWindow()
	size := mux.Size{Rows: cfg.InitialRows, Cols: cfg.InitialCols}
	for i := range max(tabs, 1) {
		_, pane := s.mux.NewTab(mw, size)
		pane.AppendText(greeting(i+1, nil)...)
	}

	return termwindow.New(termwindow.Options{
		Mux:             s.mux,
		WindowID:        mw.ID(),
		Store:           s.store,
		Executor:        s.exec,
		Scheduler:       s.sched,
		Fonts:           fonts,
		Conn:            conn,
		NewRenderState:  tcellgui.RenderState,
		Scripts:         s.scripts,
		Spawner:         &tabSpawner{mux: s.mux},
		Logger:          s.logger,
		AutoMaintenance: true,
	})
}

func greeting(n int, args []string) []string {
	lines := []string{
		fmt.Sprintf("tab %d", n),
		"",
		"CTRL|SHIFT+t opens a tab, CTRL|SHIFT+w closes it.",
		"Drag to select, double click selects a word, triple click a line.",
		"Documentation: https://wezfurlong.org/wezterm/",
	}
	if len(args) > 0 {
		lines = append(lines, "", "args: "+strings.Join(args, " "))
	}
	return lines
}

// tabSpawner opens in-memory tabs.
type tabSpawner struct {
	mux *memmux.Mux
}

func (s *tabSpawner) SpawnTab(id mux.WindowID, args []string) error {
	w, ok := s.mux.Window(id)
	if !ok {
		return fmt.Errorf("spawn tab in window %d: %w", id, termwindow.ErrNoSuchWindow)
	}
	mw, ok := w.(*memmux.Window)
	if !ok {
		return fmt.Errorf("spawn tab in window %d: %w", id, errNotMemmux)
	}
	size := mux.Size{Rows: 24, Cols: 80}
	if tabs := mw.Tabs(); len(tabs) > 0 {
		size = tabs[0].Size()
	}
	_, pane := s.mux.NewTab(mw, size)
	pane.AppendText(greeting(mw.Len(), args)...)
	return nil
}

func run(ctx context.Context, opts options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.EnablePaste()
	screen.EnableFocus()

	conn := tcellgui.NewConnection(screen, s.exec, s.logger)
	tw, err := s.newWindow(opts.tabs, conn, tcellgui.NewCellFonts(s.store.Current().Config))
	if err != nil {
		return err
	}
	s.watchConfig()
	if err := tw.Open(); err != nil {
		return err
	}

	err = conn.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
