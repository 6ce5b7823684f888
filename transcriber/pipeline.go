package transcriber

import (
	"context"
	"errors"
	"io"
)

// chunkSize is 100 ms of s16le/16k/mono audio per read.
const chunkSize = 3200

// Run is the pipeline worker. It owns the raw caption stream for the life of
// the encoder and must keep draining it even while output is disabled, or the
// encoder's stdout buffer backs up.
//
// State machine: Disabled → (re-arm) Armed → Listening → Disabled, terminal on
// the stop flag. A re-arm discards the current recognizer session and starts a
// fresh one with the carried language; segments from the new session are
// rebased by the carried offset, which keeps exported timestamps aligned to
// the recording clock across enable/disable cycles.
//
// Recognizer failures are reported through note and end only this worker,
// never the recording. note must be safe for concurrent use.
func Run(raw io.Reader, rec Recognizer, tr *Transcript, ctl *Controls, note func(format string, args ...any)) error {
	var (
		sess     Session
		consumed chan struct{}
	)
	closeSession := func() {
		if sess == nil {
			return
		}
		if err := sess.Close(); err != nil {
			note("recognizer close: %v", err)
		}
		<-consumed
		sess = nil
	}
	defer closeSession()

	buf := make([]byte, chunkSize)
	for {
		if ctl.Stopped() {
			return nil
		}

		if cmd, ok := ctl.TakeRearm(); ok {
			closeSession()
			s, err := rec.Start(context.Background(), SessionConfig{Language: cmd.Language})
			if err != nil {
				note("recognizer start: %v", err)
			} else {
				sess = s
				consumed = make(chan struct{})
				go consume(s, cmd.BaseOffsetMs, tr, ctl, consumed)
			}
		}

		n, err := raw.Read(buf)
		if n > 0 && sess != nil && ctl.Enabled() {
			if ferr := sess.Feed(buf[:n]); ferr != nil {
				note("recognizer feed: %v", ferr)
				closeSession()
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			return err
		}
	}
}

// consume rebases the session's window-relative segments and appends them
// while output is enabled. Arrival order is time order: the recognizer
// processes a single ordered stream.
func consume(sess Session, baseMs int64, tr *Transcript, ctl *Controls, done chan struct{}) {
	defer close(done)
	for seg := range sess.Segments() {
		if !ctl.Enabled() || ctl.Stopped() {
			continue
		}
		tr.Append(Segment{
			StartMs: baseMs + seg.StartMs,
			EndMs:   baseMs + seg.EndMs,
			Text:    seg.Text,
		})
	}
}
