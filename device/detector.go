package device

import (
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// BackendType identifies a command line PCM player
type BackendType int

const (
	BackendPulse BackendType = iota
	BackendPipeWire
	BackendALSA
	BackendSoX
	BackendFFplay
	BackendOSS
)

// BackendConfig is a resolved player: exec Path with Args, or an OSS device node
type BackendConfig struct {
	Type BackendType
	Name string
	Path string
	Args []string
}

// player describes one candidate; args receives the sample rate as text
type player struct {
	typ  BackendType
	name string
	bin  string
	args func(rate string) []string
}

// players in preference order; every entry reads s16le stereo from stdin
var players = []player{
	{BackendPulse, "pacat", "pacat", func(r string) []string {
		return []string{"--raw", "--format=s16le", "--rate=" + r, "--channels=2", "--latency-msec=50", "--playback"}
	}},
	{BackendPipeWire, "pw-cat", "pw-cat", func(r string) []string {
		return []string{"--playback", "--format=s16", "--rate=" + r, "--channels=2", "--latency=50ms", "-"}
	}},
	{BackendALSA, "aplay", "aplay", func(r string) []string {
		return []string{"-t", "raw", "-f", "S16_LE", "-r", r, "-c", "2", "-q"}
	}},
	{BackendSoX, "sox", "play", func(r string) []string {
		return []string{"-t", "raw", "-e", "signed", "-b", "16", "-c", "2", "-r", r, "-", "-d", "-q"}
	}},
	{BackendFFplay, "ffplay", "ffplay", func(r string) []string {
		return []string{"-nodisp", "-autoexit", "-f", "s16le", "-ac", "2", "-ar", r,
			"-probesize", "32", "-analyzeduration", "0", "-i", "pipe:0", "-loglevel", "quiet"}
	}},
}

// ossDevice is written directly on FreeBSD when no player is installed
const ossDevice = "/dev/dsp"

// DetectBackend picks the first installed player from the preference list
func DetectBackend(rate int) (*BackendConfig, error) {
	return detectBackend(rate, exec.LookPath)
}

func detectBackend(rate int, lookPath func(string) (string, error)) (*BackendConfig, error) {
	sr := strconv.Itoa(rate)
	for _, p := range players {
		path, err := lookPath(p.bin)
		if err != nil {
			continue
		}
		return &BackendConfig{Type: p.typ, Name: p.name, Path: path, Args: p.args(sr)}, nil
	}
	if runtime.GOOS == "freebsd" {
		if _, err := os.Stat(ossDevice); err == nil {
			return &BackendConfig{Type: BackendOSS, Name: "oss", Path: ossDevice}, nil
		}
	}
	return nil, ErrNoAudioBackend
}
