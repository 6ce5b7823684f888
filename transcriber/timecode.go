package transcriber

import (
	"fmt"
	"regexp"
	"strconv"
)

// FormatTimecode renders a millisecond offset as HH:MM:SS.mmm, the format
// used in transcript exports and in the recognizer's output lines.
func FormatTimecode(ms int64) string {
	h := ms / 3_600_000
	m := (ms / 60_000) % 60
	s := (ms / 1000) % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}

var timecodeRe = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2})\.(\d{3})$`)

// ParseTimecode is the inverse of FormatTimecode.
func ParseTimecode(tc string) (int64, error) {
	m := timecodeRe.FindStringSubmatch(tc)
	if m == nil {
		return 0, fmt.Errorf("bad timecode %q", tc)
	}
	h, _ := strconv.ParseInt(m[1], 10, 64)
	mi, _ := strconv.ParseInt(m[2], 10, 64)
	s, _ := strconv.ParseInt(m[3], 10, 64)
	ms, _ := strconv.ParseInt(m[4], 10, 64)
	return ((h*60+mi)*60+s)*1000 + ms, nil
}
