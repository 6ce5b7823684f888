// rcrd records a call by tapping the default sink monitor and the microphone
// through one ffmpeg process, with live mic muting, markers, and optional
// whisper.cpp transcription, controlled from a small terminal UI.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ademasi/rcrd/config"
	"github.com/ademasi/rcrd/devices"
	"github.com/ademasi/rcrd/doctor"
	"github.com/ademasi/rcrd/ffmpeg"
	"github.com/ademasi/rcrd/journal"
	"github.com/ademasi/rcrd/log"
	"github.com/ademasi/rcrd/transcriber"
)

var version = "dev"

type options struct {
	output         string
	durationSec    int
	sink           string
	source         string
	noMic          bool
	debug          bool
	model          string
	lang           string
	backend        string
	saveTranscript bool
	setup          bool
	logPath        string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "rcrd",
		Short:         "Record calls from the default sink monitor and microphone",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runRecord(opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file path (default <prefix><timestamp>.ogg)")
	f.IntVarP(&opts.durationSec, "duration", "d", 0, "stop after this many seconds (0 = until quit)")
	f.StringVar(&opts.sink, "sink", "", "sink to tap instead of the discovered default")
	f.StringVar(&opts.source, "source", "", "microphone instead of the discovered default")
	f.BoolVar(&opts.noMic, "no-mic", false, "record the sink monitor only")
	f.BoolVar(&opts.debug, "debug", false, "print the ffmpeg command and run it with inherited stdio")
	f.StringVar(&opts.model, "model", "", "whisper model path (overrides config)")
	f.StringVar(&opts.lang, "lang", "", "initial transcription language (overrides config)")
	f.StringVar(&opts.backend, "backend", "", "recognizer backend: vulkan or openblas (overrides config)")
	f.BoolVar(&opts.saveTranscript, "save-transcript", false, "write the transcript as CSV next to the recording")
	f.BoolVar(&opts.setup, "setup", false, "pick the microphone interactively")
	f.StringVar(&opts.logPath, "logpath", "", "diagnostic log directory")

	cmd.AddCommand(doctorCmd(), journalCmd())
	return cmd
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check ffmpeg, devices, recognizer, and microphone capture",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintln(os.Stderr, "Warning:", err)
				cfg = config.Default()
			}
			if code := doctor.Run(cfg); code != 0 {
				os.Exit(code)
			}
		},
	}
}

func journalCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List recent recordings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := journal.Open(journal.DefaultPath())
			if err != nil {
				return err
			}
			defer store.Close()
			entries, err := store.Recent(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no recordings yet")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%s  %7.1fs  %2d markers  %3d segments  %s\n",
					e.StartedAt.Local().Format("2006-01-02 15:04"),
					e.DurationS, e.Markers, e.Segments, e.Output)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of rows to show")
	return cmd
}

func runRecord(opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(config.Path()); os.IsNotExist(statErr) {
		if err := config.Save(cfg); err != nil {
			fmt.Fprintln(os.Stderr, "Warning: could not write default config:", err)
		}
	}

	modelPath := cfg.WhisperModel
	if opts.model != "" {
		modelPath = opts.model
	}
	language := cfg.Language
	if opts.lang != "" {
		language = opts.lang
	}
	backend := cfg.Backend
	if opts.backend != "" {
		backend = opts.backend
	}

	logDir, err := log.ResolveDir(opts.logPath)
	if err == nil {
		err = log.Init(logDir)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning: diagnostic log disabled:", err)
	}
	defer log.Close()

	if opts.setup {
		src, err := pickSource()
		if err != nil {
			return err
		}
		opts.source = src.Name
	}

	sink, mic := opts.sink, opts.source
	if sink == "" || (mic == "" && !opts.noMic) {
		d, err := devices.Detect()
		if err != nil {
			return err
		}
		if sink == "" {
			sink = d.Sink
		}
		if mic == "" {
			mic = d.Source
		}
	}
	if sink == "" {
		return fmt.Errorf("no default sink found; pass --sink")
	}
	if opts.noMic {
		mic = ""
	} else if mic == "" {
		return fmt.Errorf("no default source found; pass --source or --no-mic")
	}
	monitor := devices.Monitor(sink)

	output := opts.output
	if output == "" {
		output = defaultOutputName(cfg.FilePrefix, time.Now())
	}

	var micCtl *ffmpeg.MicControl
	if mic != "" {
		micCtl, err = ffmpeg.PrepareMicControl()
		if err != nil {
			return err
		}
	}

	req := ffmpeg.Request{
		Monitor:     monitor,
		Mic:         mic,
		Output:      output,
		DurationSec: opts.durationSec,
		Transcribe:  modelPath != "",
	}
	if micCtl != nil {
		req.MicControl = micCtl.Path()
	}

	if opts.debug {
		err := ffmpeg.SpawnDebug(req)
		if micCtl != nil {
			micCtl.Remove()
		}
		return err
	}

	ring := ffmpeg.NewLogRing(ffmpeg.RingCapacity)
	meter := &ffmpeg.LevelMeter{}
	proc, err := ffmpeg.Spawn(req, ring, meter)
	if err != nil {
		if micCtl != nil {
			micCtl.Remove()
		}
		return err
	}
	log.SessionStart(monitor, mic, output)

	sess := &Session{
		Start:    time.Now(),
		Duration: time.Duration(opts.durationSec) * time.Second,
		Output:   output,
		Monitor:  monitor,
		Mic:      mic,
		GitRev:   gitRevision(),
		Model:    modelPath,
		Language: language,
		Proc:     proc,
		MicCtl:   micCtl,
		Ring:     ring,
		Meter:    meter,
	}

	var pipeDone chan error
	if modelPath != "" {
		sess.Transcript = &transcriber.Transcript{}
		sess.Controls = transcriber.NewControls()
		rec := transcriber.NewWhisper(transcriber.WhisperConfig{
			Command: cfg.RecognizerCommand,
			Model:   modelPath,
			Backend: backend,
		})
		pipeDone = make(chan error, 1)
		go func() {
			pipeDone <- transcriber.Run(proc.Stdout(), rec, sess.Transcript, sess.Controls, log.Warnf)
		}()
	}

	p := tea.NewProgram(newModel(sess), tea.WithAltScreen())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM)
	go func() {
		if _, ok := <-sig; ok {
			p.Send(interruptMsg{})
		}
	}()

	final, tuiErr := p.Run()
	signal.Stop(sig)
	close(sig)

	// The shutdown order is fixed regardless of why the loop ended: kill the
	// encoder so the caption stream hits EOF, then join the pipeline worker,
	// then clean up and export.
	stopErr := proc.Stop()
	if sess.Controls != nil {
		sess.Controls.Stop()
		<-pipeDone
	}
	if micCtl != nil {
		if err := micCtl.Remove(); err != nil {
			log.Warnf("removing mic control file: %v", err)
		}
	}

	fm, _ := final.(model)
	if path, err := saveMarkers(output, fm.markers); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	} else if path != "" {
		fmt.Println("Markers:", path)
	}
	var segCount int
	if sess.Transcript != nil {
		segCount = sess.Transcript.Len()
		if opts.saveTranscript {
			if path, err := saveTranscript(output, sess.Transcript.Snapshot()); err != nil {
				fmt.Fprintln(os.Stderr, "Warning:", err)
			} else if path != "" {
				fmt.Println("Transcript:", path)
			}
		}
	}

	elapsed := time.Since(sess.Start)
	if cfg.Journal {
		if store, err := journal.Open(journal.DefaultPath()); err == nil {
			entry := journal.Entry{
				StartedAt: sess.Start,
				DurationS: elapsed.Seconds(),
				Output:    output,
				Markers:   len(fm.markers),
				Segments:  segCount,
				Language:  fm.language,
			}
			if err := store.Add(entry); err != nil {
				log.Warnf("journal: %v", err)
			}
			store.Close()
		} else {
			log.Warnf("journal: %v", err)
		}
	}

	runErr := tuiErr
	if runErr == nil {
		runErr = fm.err
	}
	if runErr == nil {
		runErr = stopErr
	}
	log.SessionEnd(elapsed.Seconds(), len(fm.markers), segCount, runErr)
	if runErr != nil {
		return fmt.Errorf("recording failed: %w", runErr)
	}
	fmt.Printf("Saved %s (%s)\n", output, elapsed.Truncate(time.Second))
	return nil
}
