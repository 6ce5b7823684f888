package transcriber

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"time"
)

// WhisperConfig selects the whisper.cpp stream binary and model. Exact flags
// are pinned to the targeted build: the stream binary reads s16le/16k/mono on
// stdin and prints one "[HH:MM:SS.mmm --> HH:MM:SS.mmm]  text" line per
// finalized utterance.
type WhisperConfig struct {
	Command string // binary name or path; default "whisper-stream"
	Model   string // ggml/gguf model path
	Backend string // "vulkan" (GPU, default) or "openblas" (CPU)
	Threads int
}

const DefaultCommand = "whisper-stream"

type whisperRecognizer struct {
	cfg WhisperConfig
}

// NewWhisper returns a Recognizer that spawns one recognizer process per
// listening window.
func NewWhisper(cfg WhisperConfig) Recognizer {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 8
	}
	return &whisperRecognizer{cfg: cfg}
}

func (w *whisperRecognizer) Start(ctx context.Context, cfg SessionConfig) (Session, error) {
	args := []string{"-m", w.cfg.Model, "-t", strconv.Itoa(w.cfg.Threads)}
	if cfg.Language != "" {
		args = append(args, "-l", cfg.Language)
	}
	if w.cfg.Backend == "openblas" {
		args = append(args, "--no-gpu")
	}

	cmd := exec.CommandContext(ctx, w.cfg.Command, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("recognizer stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("recognizer stdout: %w", err)
	}
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn recognizer: %w", err)
	}

	s := &whisperSession{
		cmd:   cmd,
		stdin: stdin,
		segs:  make(chan Segment, 16),
	}
	go s.readSegments(stdout)
	return s, nil
}

type whisperSession struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	segs  chan Segment
}

func (s *whisperSession) Feed(pcm []byte) error {
	_, err := s.stdin.Write(pcm)
	return err
}

func (s *whisperSession) Segments() <-chan Segment { return s.segs }

// Close ends the window: stdin EOF makes the process flush and exit; if it
// lingers it gets killed. Segments is closed by the reader goroutine.
func (s *whisperSession) Close() error {
	_ = s.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(3 * time.Second):
		_ = s.cmd.Process.Kill()
		return <-done
	}
}

// segmentRe matches whisper.cpp's finalized-utterance lines.
var segmentRe = regexp.MustCompile(`^\[(\d{2,}:\d{2}:\d{2}\.\d{3}) --> (\d{2,}:\d{2}:\d{2}\.\d{3})\]\s*(.+)$`)

func (s *whisperSession) readSegments(r io.Reader) {
	defer close(s.segs)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	for scanner.Scan() {
		seg, ok := parseSegmentLine(scanner.Text())
		if !ok {
			continue
		}
		s.segs <- seg
	}
}

func parseSegmentLine(line string) (Segment, bool) {
	m := segmentRe.FindStringSubmatch(line)
	if m == nil {
		return Segment{}, false
	}
	start, err := ParseTimecode(m[1])
	if err != nil {
		return Segment{}, false
	}
	end, err := ParseTimecode(m[2])
	if err != nil {
		return Segment{}, false
	}
	return Segment{StartMs: start, EndMs: end, Text: m[3]}, true
}
