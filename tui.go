package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ademasi/rcrd/log"
	"github.com/ademasi/rcrd/transcriber"
)

type tickMsg time.Time

// interruptMsg is injected by the signal watcher in runRecord; it behaves
// exactly like pressing q.
type interruptMsg struct{}

var languages = []string{"en", "fr"}

type model struct {
	sess *Session

	muted        bool
	transcribing bool
	language     string
	markers      []Marker

	err      error // abnormal encoder exit verdict
	expired  bool  // duration limit already fired
	quitting bool

	width, height int
}

func newModel(sess *Session) model {
	lang := sess.Language
	if lang == "" {
		lang = languages[0]
	}
	return model{sess: sess, language: lang}
}

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case interruptMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		// Liveness first: an encoder that died on its own ends the session,
		// and the verdict decides the exit status.
		if exited, err := m.sess.Proc.TryWait(); exited {
			m.err = err
			return m, tea.Quit
		}
		if m.sess.Duration > 0 && !m.expired && m.sess.Elapsed() >= m.sess.Duration {
			m.expired = true
			return m, tea.Quit
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "m":
		if m.sess.MicCtl == nil {
			m.sess.Ring.Append("no microphone in this session")
			return m, nil
		}
		gain := 0.0
		if m.muted {
			gain = 1.0
		}
		if err := m.sess.MicCtl.WriteVolume(gain); err != nil {
			// Best effort: the recording keeps running at the old gain.
			m.sess.Ring.Append(fmt.Sprintf("mic toggle failed: %v", err))
			log.Warnf("mic toggle failed: %v", err)
			return m, nil
		}
		m.muted = !m.muted

	case "b":
		mk := Marker{
			Timestamp: m.sess.Elapsed().Seconds(),
			Note:      fmt.Sprintf("Marker #%d", len(m.markers)+1),
		}
		m.markers = append(m.markers, mk)
		log.Infof("marker %q at %.1fs", mk.Note, mk.Timestamp)

	case "t":
		if m.sess.Controls == nil {
			m.sess.Ring.Append("transcription not configured (set whisper_model)")
			return m, nil
		}
		m.transcribing = !m.transcribing
		m.sess.Controls.SetEnabled(m.transcribing)
		if m.transcribing {
			m.sess.Controls.SendRearm(transcriber.Rearm{
				BaseOffsetMs: m.sess.Elapsed().Milliseconds(),
				Language:     m.language,
			})
			log.Infof("transcription on (%s)", m.language)
		} else {
			log.Info("transcription off")
		}

	case "l":
		for i, l := range languages {
			if l == m.language {
				m.language = languages[(i+1)%len(languages)]
				break
			}
		}
		m.sess.Ring.Append("language set to " + m.language)

	case "y":
		text := m.sess.Output
		if m.sess.Transcript != nil {
			if segs := m.sess.Transcript.Snapshot(); len(segs) > 0 {
				text = segs[len(segs)-1].Text
			}
		}
		if err := clipboard.WriteAll(text); err != nil {
			m.sess.Ring.Append(fmt.Sprintf("clipboard: %v", err))
		} else {
			m.sess.Ring.Append("copied: " + text)
		}
	}
	return m, nil
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Bold(true)
	recStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	onAirStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
)

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	title := "rcrd"
	if m.sess.GitRev != "" {
		title += " (" + m.sess.GitRev + ")"
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	b.WriteString(infoStyle.Render("File:   "+m.sess.Output) + "\n")
	b.WriteString(infoStyle.Render("Sink:   "+m.sess.Monitor) + "\n")
	mic := m.sess.Mic
	if mic == "" {
		mic = "(none)"
	}
	b.WriteString(infoStyle.Render("Mic:    "+mic) + "\n")
	if m.sess.Model != "" {
		b.WriteString(infoStyle.Render("Model:  "+m.sess.Model) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(m.statusLine() + "\n")
	b.WriteString(m.levelLine() + "\n\n")

	for _, line := range m.panelLines() {
		b.WriteString(dimStyle.Render(line) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("q quit · m mute · b marker · t transcribe · l language · y copy") + "\n")
	return b.String()
}

func (m model) statusLine() string {
	elapsed := m.sess.Elapsed().Truncate(time.Second)
	status := recStyle.Render(fmt.Sprintf("● REC %s", elapsed))
	if m.sess.Duration > 0 {
		status += dimStyle.Render(fmt.Sprintf(" / %s", m.sess.Duration))
	}

	switch {
	case m.sess.MicCtl == nil:
		status += "  " + dimStyle.Render("mic n/a")
	case m.muted:
		status += "  " + mutedStyle.Render("MUTED")
	default:
		status += "  " + onAirStyle.Render("ON AIR")
	}

	status += "  " + dimStyle.Render(fmt.Sprintf("markers %d", len(m.markers)))
	if m.transcribing {
		status += "  " + activeStyle.Render("stt:"+m.language)
	} else if m.sess.Controls != nil {
		status += "  " + dimStyle.Render("stt off ("+m.language+")")
	}
	return status
}

// levelLine draws the momentary loudness as a bar over -60..0 LUFS.
func (m model) levelLine() string {
	db, ok := m.sess.Meter.Level()
	if !ok {
		return dimStyle.Render("level  " + strings.Repeat("·", 30))
	}
	const width = 30
	frac := (db + 60) / 60
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * width)
	bar := strings.Repeat("█", filled) + strings.Repeat("·", width-filled)
	return dimStyle.Render("level  ") + activeStyle.Render(bar) + dimStyle.Render(fmt.Sprintf(" %6.1f dB", db))
}

// panelLines shows the live transcript while transcription is on, the encoder
// log tail otherwise.
func (m model) panelLines() []string {
	if m.transcribing && m.sess.Transcript != nil {
		segs := m.sess.Transcript.Snapshot()
		if len(segs) > 10 {
			segs = segs[len(segs)-10:]
		}
		lines := make([]string, 0, len(segs))
		for _, s := range segs {
			lines = append(lines, fmt.Sprintf("[%s] %s", transcriber.FormatTimecode(s.StartMs), s.Text))
		}
		if len(lines) == 0 {
			return []string{"(listening...)"}
		}
		return lines
	}
	return m.sess.Ring.Lines()
}
