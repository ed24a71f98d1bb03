package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var DefaultSimpleLogger Logger

func init() {
	DefaultSimpleLogger = NewLogger()
	DefaultSimpleLogger.(*SimpleLogger).SetDebug(true)
}

var colors sync.Map

func getColor(c color.Attribute) *color.Color {
	ccAny, _ := colors.LoadOrStore(c, color.New(c))
	return ccAny.(*color.Color)
}

type SimpleLogger struct {
	lock       sync.Mutex
	output     io.Writer
	formatFunc func(level, s string) string
	debug      bool
	color      bool
}

func NewLogger() *SimpleLogger {
	s := &SimpleLogger{
		output:     os.Stdout,
		formatFunc: DefaultFormatFunc,
	}
	return s
}

func (s *SimpleLogger) SetOutput(w io.Writer) {
	if w != nil {
		s.output = w
	} else {
		s.output = io.Discard
	}
}

func (s *SimpleLogger) SetFormatFunc(f func(level, s string) string) {
	if f != nil {
		s.formatFunc = f
	}
}

func (s *SimpleLogger) SetDebug(debug bool) {
	s.debug = debug
}

func (s *SimpleLogger) SetColor(color bool) {
	s.color = color
}

func (s *SimpleLogger) EnableColor() bool {
	return s.color
}

func (s *SimpleLogger) print(level Level, str string) {
	str = strings.TrimSpace(str)
	levelStr := string(level)
	if s.color {
		switch level {
		case Info:
			levelStr = getColor(color.FgGreen).Sprint(levelStr)
		case Warn:
			levelStr = getColor(color.FgYellow).Sprint(levelStr)
		case Error, Fatal:
			levelStr = getColor(color.FgRed).Sprint(levelStr)
		case Debug:
			levelStr = getColor(color.FgBlue).Sprint(levelStr)
		}
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	fmt.Fprintln(s.output, s.formatFunc(levelStr, str))
}

func (s *SimpleLogger) Print(level Level, a ...any) {
	if level == Debug && !s.debug {
		return
	}
	s.print(level, fmt.Sprint(a...))
}

func (s *SimpleLogger) Info(a ...any) {
	s.print(Info, fmt.Sprint(a...))
}

func (s *SimpleLogger) Warn(a ...any) {
	s.print(Warn, fmt.Sprint(a...))
}

func (s *SimpleLogger) Error(a ...any) {
	s.print(Error, fmt.Sprint(a...))
}

func (s *SimpleLogger) Debug(a ...any) {
	if s.debug {
		s.print(Debug, fmt.Sprint(a...))
	}
}

func (s *SimpleLogger) Fatal(a ...any) {
	s.print(Fatal, fmt.Sprint(a...))
}
