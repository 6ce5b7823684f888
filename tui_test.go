package main

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ademasi/rcrd/ffmpeg"
	"github.com/ademasi/rcrd/transcriber"
)

func testSession(t *testing.T) (*Session, *ffmpeg.FakeProcess) {
	t.Helper()
	fake := ffmpeg.NewFakeProcess()
	sess := &Session{
		Start:    time.Now(),
		Output:   "call.ogg",
		Monitor:  "sink.monitor",
		Mic:      "mic",
		Language: "en",
		Proc:     fake,
		Ring:     ffmpeg.NewLogRing(ffmpeg.RingCapacity),
		Meter:    &ffmpeg.LevelMeter{},
	}
	return sess, fake
}

func press(t *testing.T, m model, key string) (model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	nm, cmd := m.Update(msg)
	return nm.(model), cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []string{"q", "esc", "ctrl+c"} {
		sess, _ := testSession(t)
		m, cmd := press(t, newModel(sess), key)
		if !isQuit(cmd) {
			t.Errorf("key %q: expected quit command", key)
		}
		if !m.quitting {
			t.Errorf("key %q: quitting flag not set", key)
		}
	}
}

func TestMarkerKeyAppendsNumberedMarkers(t *testing.T) {
	sess, _ := testSession(t)
	sess.Start = time.Now().Add(-time.Second)

	m := newModel(sess)
	m, _ = press(t, m, "b")
	m, _ = press(t, m, "b")

	if len(m.markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(m.markers))
	}
	if m.markers[0].Note != "Marker #1" || m.markers[1].Note != "Marker #2" {
		t.Errorf("unexpected notes: %q, %q", m.markers[0].Note, m.markers[1].Note)
	}
	if m.markers[0].Timestamp < 1.0 {
		t.Errorf("timestamp %f should reflect elapsed time", m.markers[0].Timestamp)
	}
	if m.markers[1].Timestamp < m.markers[0].Timestamp {
		t.Errorf("timestamps must be non-decreasing: %f then %f",
			m.markers[0].Timestamp, m.markers[1].Timestamp)
	}
}

func TestMuteToggleWritesDirectives(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	ctl, err := ffmpeg.PrepareMicControl()
	if err != nil {
		t.Fatal(err)
	}
	sess, _ := testSession(t)
	sess.MicCtl = ctl

	m := newModel(sess)
	for i := 0; i < 3; i++ {
		m, _ = press(t, m, "m")
	}
	if !m.muted {
		t.Error("three toggles should leave the mic muted")
	}

	data, err := os.ReadFile(ctl.Path())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{
		"0.0 volume@micvol volume 1.0",
		"0.0 volume@micvol volume 0.0",
		"0.0 volume@micvol volume 1.0",
		"0.0 volume@micvol volume 0.0",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d directives, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("directive %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestMuteKeyWithoutMic(t *testing.T) {
	sess, _ := testSession(t)
	sess.Mic = ""

	m, _ := press(t, newModel(sess), "m")
	if m.muted {
		t.Error("cannot mute a session without a microphone")
	}
	if len(sess.Ring.Lines()) == 0 {
		t.Error("expected a ring notice")
	}
}

func TestTranscribeToggleArmsPipeline(t *testing.T) {
	sess, _ := testSession(t)
	sess.Start = time.Now().Add(-10 * time.Second)
	sess.Model = "ggml-base.bin"
	sess.Transcript = &transcriber.Transcript{}
	sess.Controls = transcriber.NewControls()

	m, _ := press(t, newModel(sess), "t")
	if !m.transcribing || !sess.Controls.Enabled() {
		t.Fatal("first toggle should enable transcription")
	}
	r, ok := sess.Controls.TakeRearm()
	if !ok {
		t.Fatal("expected a pending re-arm")
	}
	if r.BaseOffsetMs < 10000 || r.BaseOffsetMs > 11000 {
		t.Errorf("base offset %d should match elapsed time", r.BaseOffsetMs)
	}
	if r.Language != "en" {
		t.Errorf("language = %q, want en", r.Language)
	}

	// Language change takes effect on the next re-arm.
	m, _ = press(t, m, "l")
	m, _ = press(t, m, "t")
	if sess.Controls.Enabled() {
		t.Fatal("second toggle should disable transcription")
	}
	m, _ = press(t, m, "t")
	r, ok = sess.Controls.TakeRearm()
	if !ok {
		t.Fatal("expected a pending re-arm after re-enable")
	}
	if r.Language != "fr" {
		t.Errorf("language = %q, want fr", r.Language)
	}
}

func TestTranscribeKeyWithoutModel(t *testing.T) {
	sess, _ := testSession(t)
	m, _ := press(t, newModel(sess), "t")
	if m.transcribing {
		t.Error("toggle must be inert without a configured model")
	}
	if len(sess.Ring.Lines()) == 0 {
		t.Error("expected a ring notice")
	}
}

func TestLanguageCycle(t *testing.T) {
	sess, _ := testSession(t)
	m := newModel(sess)
	m, _ = press(t, m, "l")
	if m.language != "fr" {
		t.Fatalf("language = %q, want fr", m.language)
	}
	m, _ = press(t, m, "l")
	if m.language != "en" {
		t.Fatalf("language = %q, want en", m.language)
	}
}

func TestAbnormalExitQuitsWithError(t *testing.T) {
	sess, fake := testSession(t)
	fake.Exit(errors.New("boom"))

	nm, cmd := newModel(sess).Update(tickMsg(time.Now()))
	m := nm.(model)
	if !isQuit(cmd) {
		t.Fatal("expected quit on encoder exit")
	}
	if m.err == nil {
		t.Error("abnormal exit must surface as an error")
	}
}

func TestCleanExitQuitsWithoutError(t *testing.T) {
	sess, fake := testSession(t)
	fake.Stop()

	nm, cmd := newModel(sess).Update(tickMsg(time.Now()))
	m := nm.(model)
	if !isQuit(cmd) {
		t.Fatal("expected quit on encoder exit")
	}
	if m.err != nil {
		t.Errorf("clean exit must not surface an error: %v", m.err)
	}
}

func TestDurationExpiryFiresOnce(t *testing.T) {
	sess, _ := testSession(t)
	sess.Start = time.Now().Add(-2 * time.Second)
	sess.Duration = time.Second

	nm, cmd := newModel(sess).Update(tickMsg(time.Now()))
	m := nm.(model)
	if !isQuit(cmd) {
		t.Fatal("expected quit once the duration elapsed")
	}
	if !m.expired {
		t.Fatal("expired flag not set")
	}

	nm, cmd = m.Update(tickMsg(time.Now()))
	m = nm.(model)
	if cmd == nil {
		t.Fatal("expected the tick chain to continue")
	}
	if _, quit := cmd().(tea.QuitMsg); quit {
		t.Error("expiry must fire exactly once")
	}
}

func TestViewShowsSessionInfo(t *testing.T) {
	sess, _ := testSession(t)
	m := newModel(sess)
	if m.View() != "Loading..." {
		t.Error("expected placeholder before the first resize")
	}

	nm, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	view := nm.(model).View()
	for _, want := range []string{"call.ogg", "sink.monitor", "REC", "ON AIR"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
