package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger()
	l.SetOutput(&buf)
	l.SetFormatFunc(DisableTimestampFormatFunc)

	l.Info("blocking ", "1.2.3.0/24")
	l.Debug("hidden")
	l.SetDebug(true)
	l.Debug("shown")
	l.Print(Warn, "warned")

	assert.Equal(t, "[Info] blocking 1.2.3.0/24\n[Debug] shown\n[Warn] warned\n", buf.String())
}

func TestTagLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger()
	l.SetOutput(&buf)
	l.SetFormatFunc(DisableTimestampFormatFunc)

	NewTagLogger(NewTagLogger(l, "core"), "engine").Error("dispatch fail")
	assert.Equal(t, "[Error] [core] [engine] dispatch fail\n", buf.String())
}

func TestNopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NopLogger().Fatal("nothing")
	})
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/.ipblock/ipblock.log")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".ipblock", "ipblock.log"), got)

	got, err = ExpandHome("/var/log/ipblock.log")
	require.NoError(t, err)
	assert.Equal(t, "/var/log/ipblock.log", got)
}

func TestNewFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ipblock.log")
	w, err := NewFileWriter(path)
	require.NoError(t, err)

	l := NewLogger()
	l.SetOutput(w)
	l.Info("run blocking")
	require.NoError(t, w.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(content)), "[Info] run blocking"))
}
