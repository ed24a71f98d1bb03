package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/scopenco/netblock-tools/log"

	"github.com/fsnotify/fsnotify"
)

// pollInterval bounds the wait when the watcher misses an event, e.g. on
// network filesystems.
const pollInterval = time.Second

type follower struct {
	path    string
	logger  log.Logger
	watcher *fsnotify.Watcher
	file    *os.File
	reader  *bufio.Reader
	offset  int64
	partial string
}

func newFollower(path string, logger log.Logger) (*follower, error) {
	path = filepath.Clean(path)
	file, err := os.Open(path)
	if err != nil {
		return nil, &SourceUnavailableError{Path: path, Err: err}
	}
	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		file.Close()
		return nil, &SourceUnavailableError{Path: path, Err: err}
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("create watcher fail: %s", err)
	}
	// the directory survives rename and recreate of the file
	err = watcher.Add(filepath.Dir(path))
	if err != nil {
		watcher.Close()
		file.Close()
		return nil, fmt.Errorf("watch %s fail: %s", filepath.Dir(path), err)
	}
	logger.Info(fmt.Sprintf("follow %s from offset %d", path, offset))
	return &follower{
		path:    path,
		logger:  logger,
		watcher: watcher,
		file:    file,
		reader:  bufio.NewReader(file),
		offset:  offset,
	}, nil
}

func (f *follower) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if f.file != nil {
			line, err := f.reader.ReadString('\n')
			f.offset += int64(len(line))
			if err == nil {
				line = f.partial + line
				f.partial = ""
				return trimLine(line), nil
			}
			if !errors.Is(err, io.EOF) {
				return "", err
			}
			// keep an unterminated tail until the writer finishes the line
			f.partial += line
			moved, err := f.checkRotate()
			if err != nil {
				return "", err
			}
			if moved {
				continue
			}
		} else {
			f.reopen()
			if f.file != nil {
				continue
			}
		}
		err := f.wait(ctx)
		if err != nil {
			return "", err
		}
	}
}

// checkRotate restarts from the beginning when the file was truncated and
// switches to the new file when it was replaced.
func (f *follower) checkRotate() (bool, error) {
	stat, err := os.Stat(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// rotated away, the new file has not been created yet
			return false, nil
		}
		return false, err
	}
	current, err := f.file.Stat()
	if err != nil {
		return false, err
	}
	if !os.SameFile(stat, current) {
		f.logger.Info(fmt.Sprintf("%s rotated, reopen", f.path))
		f.file.Close()
		f.file = nil
		f.reopen()
		return f.file != nil, nil
	}
	if current.Size() < f.offset {
		f.logger.Info(fmt.Sprintf("%s truncated, read from start", f.path))
		_, err = f.file.Seek(0, io.SeekStart)
		if err != nil {
			return false, err
		}
		f.offset = 0
		f.partial = ""
		f.reader.Reset(f.file)
		return true, nil
	}
	return false, nil
}

func (f *follower) reopen() {
	file, err := os.Open(f.path)
	if err != nil {
		return
	}
	f.file = file
	f.offset = 0
	f.partial = ""
	f.reader.Reset(file)
}

func (f *follower) wait(ctx context.Context) error {
	timer := time.NewTimer(pollInterval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case event, ok := <-f.watcher.Events:
			if !ok {
				return io.ErrClosedPipe
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				return nil
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return io.ErrClosedPipe
			}
			f.logger.Warn(fmt.Sprintf("watcher error: %s", err))
		}
	}
}

func (f *follower) Close() error {
	err := f.watcher.Close()
	if f.file != nil {
		f.file.Close()
	}
	return err
}
