// Package win32 implements the window backend for Windows using user32 and
// the Toolhelp process snapshot.
package win32
