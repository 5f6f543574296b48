//go:build !unix

package backend

// watchResize is a no-op where the platform has no window-change signal.
func (t *ANSITerminal) watchResize(stop <-chan struct{}) {}
