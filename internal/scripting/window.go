package scripting

import (
	"encoding/json"

	lua "github.com/yuin/gopher-lua"
)

const windowTypeName = "wezterm.Window"

// Window is the view of a terminal window that handlers receive.
type Window interface {
	WindowID() uint64
	ActivePaneTitle() string
	Dimensions() (pixelWidth, pixelHeight, dpi int)

	// ConfigOverrides returns the window's override document as JSON.
	ConfigOverrides() string
	// SetConfigOverrides replaces the window's override document.
	SetConfigOverrides(doc string) error
}

func registerWindowType(L *lua.LState) {
	mt := L.NewTypeMetatable(windowTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"window_id":            windowID,
		"active_pane_title":    windowActivePaneTitle,
		"get_dimensions":       windowDimensions,
		"get_config_overrides": windowGetOverrides,
		"set_config_overrides": windowSetOverrides,
	}))
}

func newWindowValue(L *lua.LState, w Window) lua.LValue {
	ud := L.NewUserData()
	ud.Value = w
	L.SetMetatable(ud, L.GetTypeMetatable(windowTypeName))
	return ud
}

func checkWindow(L *lua.LState) Window {
	ud := L.CheckUserData(1)
	if w, ok := ud.Value.(Window); ok {
		return w
	}
	L.ArgError(1, "window expected")
	return nil
}

func windowID(L *lua.LState) int {
	L.Push(lua.LNumber(checkWindow(L).WindowID()))
	return 1
}

func windowActivePaneTitle(L *lua.LState) int {
	L.Push(lua.LString(checkWindow(L).ActivePaneTitle()))
	return 1
}

func windowDimensions(L *lua.LState) int {
	w, h, dpi := checkWindow(L).Dimensions()
	t := L.NewTable()
	t.RawSetString("pixel_width", lua.LNumber(w))
	t.RawSetString("pixel_height", lua.LNumber(h))
	t.RawSetString("dpi", lua.LNumber(dpi))
	L.Push(t)
	return 1
}

func windowGetOverrides(L *lua.LState) int {
	doc := checkWindow(L).ConfigOverrides()
	if doc == "" {
		L.Push(L.NewTable())
		return 1
	}
	var v any
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		L.RaiseError("decoding overrides: %v", err)
		return 0
	}
	L.Push(toLua(L, v))
	return 1
}

// set_config_overrides accepts a table or a JSON string; nil clears.
func windowSetOverrides(L *lua.LState) int {
	w := checkWindow(L)
	var doc string
	switch v := L.Get(2).(type) {
	case *lua.LNilType:
		doc = ""
	case lua.LString:
		doc = string(v)
	case *lua.LTable:
		data, err := json.Marshal(fromLua(v))
		if err != nil {
			L.RaiseError("encoding overrides: %v", err)
			return 0
		}
		doc = string(data)
	default:
		L.ArgError(2, "table, string or nil expected")
		return 0
	}
	if err := w.SetConfigOverrides(doc); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}
