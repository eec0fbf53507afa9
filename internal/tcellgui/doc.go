// Package tcellgui runs terminal windows inside a host terminal using tcell.
//
// The host terminal stands in for the window system: one screen cell is
// one pixel, so window dimensions and terminal rows and cols coincide.
// Font size changes cannot change the cell grid and window resize requests
// are ignored; the window follows the host terminal's size.
//
// Everything except the event reader runs on the goroutine that calls
// Connection.Run, which is the window goroutine of every window it hosts.
package tcellgui
