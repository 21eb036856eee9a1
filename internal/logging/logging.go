// file: internal/logging/logging.go
// version: 1.0.0
// guid: 7a3d9c1e-4b6f-4a2d-8e5c-0f9b2d7e6a18

package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options describes where log output goes. An empty File keeps stderr only.
type Options struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Setup routes the standard logger and gin's writers to stderr and, when a
// file is configured, a size-rotated log file. The returned closer restores
// stderr-only output.
func Setup(opts Options) (io.Closer, error) {
	if opts.File == "" {
		return nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, err
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 32
	}

	w := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB, // MB
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
	out := io.MultiWriter(os.Stderr, w)
	log.SetOutput(out)
	gin.DefaultWriter = out
	gin.DefaultErrorWriter = out

	log.Printf("[INFO] logging to %s (GOOS=%s GOARCH=%s CPUs=%d)", opts.File, runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	return &fileCloser{w: w}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type fileCloser struct {
	w *lumberjack.Logger
}

func (c *fileCloser) Close() error {
	log.SetOutput(os.Stderr)
	gin.DefaultWriter = os.Stdout
	gin.DefaultErrorWriter = os.Stderr
	return c.w.Close()
}
