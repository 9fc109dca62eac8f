// Package x11 implements the window backend for X11 desktops.
//
// Processes are enumerated from procfs and matched by name; each process'
// main window is the first EWMH client (mapping order) owned by its PID.
// Windows are moved with _NET_MOVERESIZE_WINDOW, which window managers apply
// without restacking. Bounds are frame bounds in both directions: reads
// include decorations and writes subtract them from the requested size.
package x11
