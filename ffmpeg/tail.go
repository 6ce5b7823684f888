package ffmpeg

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"sync"
)

// RingCapacity bounds the recent-stderr buffer shown in the TUI.
const RingCapacity = 10

// LogRing is a fixed-capacity FIFO of recent diagnostic lines. The tailer is
// the sole appender; the control loop also pushes status notes into it.
type LogRing struct {
	mu    sync.Mutex
	cap   int
	lines []string
}

func NewLogRing(capacity int) *LogRing {
	if capacity <= 0 {
		capacity = RingCapacity
	}
	return &LogRing{cap: capacity}
}

func (r *LogRing) Append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lines) >= r.cap {
		r.lines = r.lines[1:]
	}
	r.lines = append(r.lines, line)
}

// Lines returns a copy in arrival order, oldest first.
func (r *LogRing) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// LevelMeter holds the latest momentary loudness reading. Last write wins;
// staleness is fine, it feeds a coarse meter.
type LevelMeter struct {
	mu    sync.Mutex
	db    float64
	valid bool
}

func (m *LevelMeter) Set(db float64) {
	m.mu.Lock()
	m.db = db
	m.valid = true
	m.mu.Unlock()
}

func (m *LevelMeter) Level() (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db, m.valid
}

// levelRe matches the momentary loudness field of ffmpeg's ebur128 log lines:
//
//	[Parsed_ebur128_1 @ ...] t: 2.1 TARGET:-23 LUFS M: -21.3 S: -23.0 ...
//
// The exact wording is pinned to the ebur128 filter of the targeted ffmpeg
// build; keep the pattern here and nowhere else.
var levelRe = regexp.MustCompile(`\bM:\s*(-?\d+(?:\.\d+)?)`)

// ExtractLevel pulls a loudness value (LUFS) out of a single diagnostic line.
func ExtractLevel(line string) (float64, bool) {
	m := levelRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Tail consumes the encoder's stderr until EOF, feeding the ring and the
// meter. It never blocks on readers of either and returns when the encoder
// closes its end.
func Tail(r io.Reader, ring *LogRing, meter *LevelMeter) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 256*1024)
	for scanner.Scan() {
		line := scanner.Text()
		ring.Append(line)
		if db, ok := ExtractLevel(line); ok {
			meter.Set(db)
		}
	}
}
