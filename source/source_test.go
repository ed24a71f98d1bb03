package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, s Source) []string {
	t.Helper()
	var lines []string
	for {
		line, err := s.Next(context.Background())
		if err == io.EOF {
			return lines
		}
		require.NoError(t, err)
		lines = append(lines, line)
	}
}

func TestReader(t *testing.T) {
	s := NewReader(io.NopCloser(strings.NewReader("a 1.2.3.4\r\n\nb 5.6.7.8\nlast")))
	assert.Equal(t, []string{"a 1.2.3.4", "", "b 5.6.7.8", "last"}, readAll(t, s))
	require.NoError(t, s.Close())
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0o644))

	s, err := Open(path, false, nil)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, []string{"one", "two"}, readAll(t, s))
}

func TestOpenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.log")
	for _, follow := range []bool{false, true} {
		_, err := Open(path, follow, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSourceUnavailable)
		assert.ErrorIs(t, err, os.ErrNotExist)
		var sourceErr *SourceUnavailableError
		require.ErrorAs(t, err, &sourceErr)
		assert.Equal(t, path, sourceErr.Path)
	}

	_, err := Open("", false, nil)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func appendFile(t *testing.T, path, data string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func nextWithin(t *testing.T, s Source) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	line, err := s.Next(ctx)
	require.NoError(t, err)
	return line
}

func TestFollowStartsAtEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	require.NoError(t, os.WriteFile(path, []byte("old 1.1.1.1\n"), 0o644))

	s, err := Open(path, true, nil)
	require.NoError(t, err)
	defer s.Close()

	appendFile(t, path, "new 2.2.2.2\n")
	assert.Equal(t, "new 2.2.2.2", nextWithin(t, s))
}

func TestFollowWaitsForWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	s, err := Open(path, true, nil)
	require.NoError(t, err)
	defer s.Close()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer f.Close()
	go func() {
		time.Sleep(100 * time.Millisecond)
		f.WriteString("par")
		time.Sleep(100 * time.Millisecond)
		f.WriteString("tial\n")
	}()
	assert.Equal(t, "partial", nextWithin(t, s))
}

func TestFollowTruncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	s, err := Open(path, true, nil)
	require.NoError(t, err)
	defer s.Close()

	appendFile(t, path, "a long line before truncation\n")
	assert.Equal(t, "a long line before truncation", nextWithin(t, s))

	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))
	assert.Equal(t, "x", nextWithin(t, s))
}

func TestFollowRotate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

	s, err := Open(path, true, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, os.Rename(path, path+".1"))
	require.NoError(t, os.WriteFile(path, []byte("rotated 3.3.3.3\n"), 0o644))
	assert.Equal(t, "rotated 3.3.3.3", nextWithin(t, s))
}

func TestFollowCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.log")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	s, err := Open(path, true, nil)
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
