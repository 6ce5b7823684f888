package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// Output codec parameters are fixed: the encoder always writes 2-channel
// 48 kHz Opus at 128k. The caption leg, when requested, is raw s16le 16 kHz
// mono on stdout, which is what whisper.cpp expects.
const (
	Binary       = "ffmpeg"
	Channels     = 2
	SampleRate   = 48000
	Codec        = "libopus"
	Bitrate      = "128k"
	CaptionRate  = 16000
	micVolTarget = "volume@micvol"
)

// Request describes one recording session's encoder invocation.
type Request struct {
	Monitor     string // pulse node of the sink monitor, always present
	Mic         string // pulse node of the microphone; empty disables the mic tap
	MicControl  string // asendcmd automation file; required when Mic is set
	Output      string
	DurationSec int  // 0 = record until stopped
	Transcribe  bool // add the raw caption leg on stdout
}

// FilterGraph builds the -filter_complex expression. The mic input is routed
// through an asendcmd/volume pair bound to the control file so gain directives
// written at runtime take effect without restarting the process. The final mix
// is split so the level-analysis leg never touches the file leg.
func FilterGraph(req Request) string {
	var parts []string
	mix := "[0:a]"
	if req.Mic != "" {
		parts = append(parts,
			fmt.Sprintf("[1:a]asendcmd=filename=%s,%s=volume=1.0[mic]", req.MicControl, micVolTarget),
			"[0:a][mic]amix=inputs=2:duration=longest:dropout_transition=3[mix]",
		)
		mix = "[mix]"
	}

	if req.Transcribe {
		parts = append(parts,
			mix+"asplit=3[out][lvl][stt]",
			"[lvl]ebur128=peak=none,anullsink",
			fmt.Sprintf("[stt]aresample=%d,aformat=sample_fmts=s16:channel_layouts=mono[cap]", CaptionRate),
		)
	} else {
		parts = append(parts,
			mix+"asplit=2[out][lvl]",
			"[lvl]ebur128=peak=none,anullsink",
		)
	}
	return strings.Join(parts, ";")
}

// Args builds the full ffmpeg argument list for the session.
func Args(req Request) []string {
	args := []string{"-hide_banner", "-nostdin", "-y"}
	if req.DurationSec > 0 {
		args = append(args, "-t", strconv.Itoa(req.DurationSec))
	}
	args = append(args, "-f", "pulse", "-i", req.Monitor)
	if req.Mic != "" {
		args = append(args, "-f", "pulse", "-i", req.Mic)
	}
	args = append(args, "-filter_complex", FilterGraph(req))
	args = append(args,
		"-map", "[out]",
		"-ac", strconv.Itoa(Channels),
		"-ar", strconv.Itoa(SampleRate),
		"-c:a", Codec,
		"-b:a", Bitrate,
		req.Output,
	)
	if req.Transcribe {
		args = append(args,
			"-map", "[cap]",
			"-f", "s16le",
			"-ac", "1",
			"-ar", strconv.Itoa(CaptionRate),
			"pipe:1",
		)
	}
	return args
}

// CommandLine renders the invocation for -debug output.
func CommandLine(req Request) string {
	return Binary + " " + strings.Join(Args(req), " ")
}
