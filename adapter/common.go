package adapter

import (
	"context"
	"net/http"

	"github.com/scopenco/netblock-tools/log"
)

type Starter interface {
	Start() error
}

type Closer interface {
	Close() error
}

type WithContext interface {
	WithContext(context.Context)
}

type WithLogger interface {
	WithLogger(log.Logger)
}

type APIHandler interface {
	APIHandler() http.Handler
}
