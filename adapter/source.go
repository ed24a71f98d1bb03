package adapter

import "context"

// LineSource yields lines in order. Next returns io.EOF at end of stream.
type LineSource interface {
	Next(ctx context.Context) (string, error)
}
