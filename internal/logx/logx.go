package logx

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns the console logger used by the chessindex binaries.
// Caller info is trimmed to file:line and padded so the component fields
// that workers attach line up.
func NewLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return fmt.Sprintf("%-28s", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}
	return zerolog.New(output).With().Timestamp().Caller().Logger()
}
