// Command power switches the relays of a K8090 card.
package main

import (
	"context"
	"io"
	"os"

	"github.com/whoisnian/glb/ansi"
	"github.com/whoisnian/glb/logger"

	"github.com/bangzek/k8090"
)

var LOG *logger.Logger

// setupLogger points LOG at w. Records carry no source location.
func setupLogger(w io.Writer, debug bool) {
	level := logger.LevelInfo
	if debug {
		level = logger.LevelDebug
	}
	colorful := false
	if f, ok := w.(*os.File); ok {
		colorful = ansi.IsSupported(f.Fd())
	}
	LOG = logger.New(logger.NewNanoHandler(w, logger.Options{
		Level:    level,
		Colorful: colorful,
	}))
}

func bridgeLogger(ctx context.Context) {
	k8090.InfoLogFunc = func(f string, a ...any) {
		LOG.Infof(ctx, f, a...)
	}
	k8090.DebugLogFunc = func(f string, a ...any) {
		LOG.Debugf(ctx, f, a...)
	}
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
