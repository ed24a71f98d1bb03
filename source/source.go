package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scopenco/netblock-tools/adapter"
	"github.com/scopenco/netblock-tools/log"
)

const Stdin = "-"

var ErrSourceUnavailable = errors.New("input source unavailable")

type SourceUnavailableError struct {
	Path string
	Err  error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("open %s fail: %s", e.Path, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

func (e *SourceUnavailableError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// Source is a line source that owns an open handle.
type Source interface {
	adapter.LineSource
	io.Closer
}

// Open returns the lines of path, or of standard input for "-". With follow
// it starts at the current end of the file and waits for appended lines.
func Open(path string, follow bool, logger log.Logger) (Source, error) {
	if logger == nil {
		logger = log.NopLogger()
	}
	if path == "" {
		return nil, &SourceUnavailableError{Path: path, Err: errors.New("no input file")}
	}
	if path == Stdin {
		return NewReader(io.NopCloser(os.Stdin)), nil
	}
	if follow {
		return newFollower(path, logger)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, &SourceUnavailableError{Path: path, Err: err}
	}
	return NewReader(file), nil
}

type reader struct {
	closer io.Closer
	reader *bufio.Reader
}

// NewReader reads lines until r is exhausted, then returns io.EOF.
func NewReader(r io.ReadCloser) Source {
	return &reader{
		closer: r,
		reader: bufio.NewReader(r),
	}
}

func (r *reader) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := r.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return trimLine(line), nil
		}
		return "", err
	}
	return trimLine(line), nil
}

func (r *reader) Close() error {
	return r.closer.Close()
}

func trimLine(line string) string {
	return strings.TrimRight(line, "\r\n")
}
