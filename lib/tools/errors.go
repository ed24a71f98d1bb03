package tools

import (
	"context"
	"errors"
	"io"
	"os"
	"syscall"
)

var errs = []error{io.EOF, io.ErrClosedPipe, os.ErrClosed, syscall.EPIPE, context.Canceled, context.DeadlineExceeded}

// IsCloseOrCanceled reports whether err only means the input ended or the
// run was stopped.
func IsCloseOrCanceled(err error) bool {
	for _, e := range errs {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
