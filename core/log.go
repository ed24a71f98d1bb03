package core

import (
	"fmt"
	"io"

	"github.com/scopenco/netblock-tools/constant"
	"github.com/scopenco/netblock-tools/log"
	"github.com/scopenco/netblock-tools/option"

	"github.com/fatih/color"
)

// LogFileStdoutOnly as log file keeps logging on stdout only.
const LogFileStdoutOnly = "-"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger logs to stdout and, unless disabled, to a size-rotated file.
func NewLogger(options option.LogOptions, debug bool, stdout io.Writer) (*log.SimpleLogger, io.Closer, error) {
	logger := log.NewLogger()
	logger.SetDebug(debug || options.Debug)
	if options.Color != nil {
		logger.SetColor(*options.Color)
	} else {
		logger.SetColor(!color.NoColor)
	}
	if options.Disabled {
		logger.SetOutput(io.Discard)
		return logger, nopCloser{}, nil
	}
	file := options.File
	if file == "" {
		file = constant.DefaultLogFile
	}
	if file == LogFileStdoutOnly {
		logger.SetOutput(stdout)
		return logger, nopCloser{}, nil
	}
	w, err := log.NewFileWriter(file)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s fail: %s", file, err)
	}
	logger.SetOutput(io.MultiWriter(stdout, w))
	return logger, w, nil
}
