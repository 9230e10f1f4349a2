// Package logging builds the logrus logger used by the ledger and CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a logger at the given level writing to file, or to stderr
// when file is empty. The returned close func releases the log file.
func New(level, file string) (*logrus.Logger, func() error, error) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(lvl)
	formatter := &logrus.TextFormatter{FullTimestamp: true}
	formatter.TimestampFormat = "2006-01-02T15:04:05.000Z07:00"
	logger.SetFormatter(formatter)

	closeFn := func() error { return nil }
	var out io.Writer = os.Stderr
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
			return nil, nil, fmt.Errorf("logging: create directory: %w", err)
		}
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: open %s: %w", file, err)
		}
		out = f
		closeFn = f.Close
		formatter.DisableColors = true
	}
	logger.SetOutput(out)

	return logger, closeFn, nil
}
