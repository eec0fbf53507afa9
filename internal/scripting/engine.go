// Package scripting runs user event handlers written in Lua.
//
// A script registers handlers with wezterm.on(name, fn). The window emits
// events at well-defined points; a handler returning false suppresses the
// default action. Handler failures are reported to the caller, which logs
// them and carries on with the default behavior.
package scripting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"
)

// DefaultHookTimeout bounds a single Emit.
const DefaultHookTimeout = 2 * time.Second

// Event names emitted by the window.
const (
	EventWindowConfigReloaded = "window-config-reloaded"
	EventWindowFocusChanged   = "window-focus-changed"
	EventWindowResized        = "window-resized"
	EventFormatWindowTitle    = "format-window-title"
	EventNewTabButtonClick    = "new-tab-button-click"
	EventOpenURI              = "open-uri"
)

// Engine is a sandboxed Lua state with an event handler registry.
//
// gopher-lua states are not goroutine-safe; the mutex serializes every
// entry point.
type Engine struct {
	mu     sync.Mutex
	L      *lua.LState
	logger *log.Logger

	handlers map[string][]*lua.LFunction
	timeout  time.Duration
	closed   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithHookTimeout sets the deadline for each Emit.
func WithHookTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// New creates an engine with the safe standard libraries and the wezterm
// module installed.
func New(logger *log.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{
		L:        lua.NewState(lua.Options{SkipOpenLibs: true}),
		logger:   logger.With("component", "lua"),
		handlers: make(map[string][]*lua.LFunction),
		timeout:  DefaultHookTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	openSafeLibraries(e.L)
	e.installModule()
	return e
}

func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func (e *Engine) installModule() {
	mod := e.L.SetFuncs(e.L.NewTable(), map[string]lua.LGFunction{
		"on":        e.luaOn,
		"log_info":  e.luaLog(log.InfoLevel),
		"log_warn":  e.luaLog(log.WarnLevel),
		"log_error": e.luaLog(log.ErrorLevel),
	})
	e.L.SetGlobal("wezterm", mod)
	registerWindowType(e.L)
}

func (e *Engine) luaOn(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	e.handlers[name] = append(e.handlers[name], fn)
	return 0
}

func (e *Engine) luaLog(level log.Level) lua.LGFunction {
	return func(L *lua.LState) int {
		e.logger.Log(level, L.CheckString(1))
		return 0
	}
}

// LoadFile runs the script at path, which registers handlers.
func (e *Engine) LoadFile(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrStateClosed
	}
	return e.protect(func() error { return e.L.DoFile(path) })
}

// DoString runs a script.
func (e *Engine) DoString(code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrStateClosed
	}
	return e.protect(func() error { return e.L.DoString(code) })
}

// HasHandlers reports whether any handler is registered for event.
func (e *Engine) HasHandlers(event string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers[event]) > 0
}

// Emit calls every handler registered for event with the window object
// followed by args. It reports whether the default action should proceed:
// any handler returning false vetoes it. On error the default proceeds.
func (e *Engine) Emit(event string, win Window, args ...any) (bool, error) {
	results, err := e.call(event, win, args)
	if err != nil {
		return true, err
	}
	for _, ret := range results {
		if ret == lua.LFalse {
			return false, nil
		}
	}
	return true, nil
}

// EmitString calls the handlers for event and returns the first string
// any of them returns. The second result is false when none did.
func (e *Engine) EmitString(event string, win Window, args ...any) (string, bool, error) {
	results, err := e.call(event, win, args)
	if err != nil {
		return "", false, err
	}
	for _, ret := range results {
		if s, ok := ret.(lua.LString); ok {
			return string(s), true, nil
		}
	}
	return "", false, nil
}

func (e *Engine) call(event string, win Window, args []any) ([]lua.LValue, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrStateClosed
	}
	fns := e.handlers[event]
	if len(fns) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	e.L.SetContext(ctx)
	defer e.L.RemoveContext()

	luaArgs := make([]lua.LValue, 0, len(args)+1)
	if win != nil {
		luaArgs = append(luaArgs, newWindowValue(e.L, win))
	} else {
		luaArgs = append(luaArgs, lua.LNil)
	}
	for _, a := range args {
		luaArgs = append(luaArgs, toLua(e.L, a))
	}

	results := make([]lua.LValue, 0, len(fns))
	for _, fn := range fns {
		err := e.protect(func() error {
			return e.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, luaArgs...)
		})
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = ErrHookTimeout
			}
			return nil, &HookError{Event: event, Err: err}
		}
		results = append(results, e.L.Get(-1))
		e.L.Pop(1)
	}
	return results, nil
}

func (e *Engine) protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Close releases the Lua state.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.L.Close()
	e.closed = true
	return nil
}
