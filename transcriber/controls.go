package transcriber

import "sync/atomic"

// Rearm tells the pipeline to discard any in-flight utterance and start a new
// recognizer session. Carrying the base offset and language together means the
// pipeline can never observe a re-arm before its payload.
type Rearm struct {
	BaseOffsetMs int64
	Language     string
}

// Controls couples the control loop to the pipeline worker. Enabled gates
// segment output, Stop is the one-way cancellation signal, and the single-slot
// rearm channel replays only the newest re-arm command.
type Controls struct {
	enabled atomic.Bool
	stopped atomic.Bool
	rearm   chan Rearm
}

func NewControls() *Controls {
	return &Controls{rearm: make(chan Rearm, 1)}
}

func (c *Controls) SetEnabled(on bool) { c.enabled.Store(on) }

func (c *Controls) Enabled() bool { return c.enabled.Load() }

// Stop transitions false→true exactly once and never back.
func (c *Controls) Stop() { c.stopped.Store(true) }

func (c *Controls) Stopped() bool { return c.stopped.Load() }

// SendRearm replaces any pending re-arm with the newest one; it never blocks
// the control loop.
func (c *Controls) SendRearm(r Rearm) {
	for {
		select {
		case c.rearm <- r:
			return
		default:
			select {
			case <-c.rearm:
			default:
			}
		}
	}
}

// TakeRearm is the pipeline-side non-blocking receive.
func (c *Controls) TakeRearm() (Rearm, bool) {
	select {
	case r := <-c.rearm:
		return r, true
	default:
		return Rearm{}, false
	}
}
