package logging

import (
	"flag"
	"io"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"k8s.io/klog/v2"
)

// maxTransportVerbosity keeps client-go request tracing (klog -v 6 and up) out of debug output.
const maxTransportVerbosity = 2

// Initialize configures the global zerolog logger and caps client-go's klog verbosity.
// Debug lowers the level to debug; otherwise info and above is written.
func Initialize(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006-01-02 15:04:05.000",
	}).Level(level).With().Timestamp().Logger()
	log.Logger = logger

	capTransportLogging(debug)
	return logger
}

func capTransportLogging(debug bool) {
	v := 0
	if debug {
		v = maxTransportVerbosity
	}

	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	// Flags are defined by InitFlags above, so Set cannot fail on an unknown name.
	_ = fs.Set("v", strconv.Itoa(v))
	_ = fs.Set("logtostderr", "true")

	klog.SetLogger(klogBridge(log.Logger))
}
