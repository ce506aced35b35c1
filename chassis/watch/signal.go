package watch

import (
	"io"
	"sync/atomic"
)

// KeyPress returns a cancel signal that fires once anything is read from r.
// On a terminal stdin is line buffered, so the user has to press Enter.
// EOF never fires the signal, a closed stdin must not abort a wait.
// The reader goroutine stays blocked in Read until r yields a byte or an error,
// it outlives the wait. Fine for a one-shot command over stdin.
func KeyPress(r io.Reader) func() bool {
	var pressed atomic.Bool
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				pressed.Store(true)
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return pressed.Load
}
