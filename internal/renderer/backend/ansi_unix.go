//go:build unix

package backend

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// watchResize turns SIGWINCH into resize events until stop is closed.
func (t *ANSITerminal) watchResize(stop <-chan struct{}) {
	if t.fd < 0 {
		return
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGWINCH)

	go func() {
		defer signal.Stop(sigs)
		for {
			select {
			case <-stop:
				return
			case <-sigs:
				w, h := t.Size()
				t.deliver(stop, Event{Type: EventResize, Width: w, Height: h})
			}
		}
	}()
}
