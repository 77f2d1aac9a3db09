// Package uiawin implements the accessibility backend for Windows on top of
// the UI Automation COM API.
//
// UIA element objects are apartment-threaded: an element is only valid on
// the OS thread whose COM apartment created it. Every Conn therefore locks
// its goroutine to an OS thread, initializes an STA apartment there, and
// keeps all element pointers private to that thread. Only plain Go values
// ever leave the package.
package uiawin
