package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"net/netip"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/scopenco/netblock-tools/adapter"
	"github.com/scopenco/netblock-tools/log"
	"github.com/scopenco/netblock-tools/option"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MountAction interface {
	adapter.Action
	adapter.APIHandler
}

// Server exposes metrics, action endpoints and optional pprof handlers.
type Server struct {
	ctx        context.Context
	fatalClose func(error)
	logger     log.Logger
	debug      bool
	secret     string
	chiMux     *chi.Mux
	httpServer *http.Server
	listener   net.Listener
	gatherer   prometheus.Gatherer
	actionAPI  map[string]http.Handler
	actionLock sync.Mutex
}

// NewServer returns a server that does nothing when options.Listen is empty.
func NewServer(ctx context.Context, logger log.Logger, options option.APIOptions) (*Server, error) {
	s := &Server{
		ctx:      ctx,
		logger:   log.NewTagLogger(logger, "api"),
		gatherer: prometheus.DefaultGatherer,
	}
	if options.Listen == "" {
		return s, nil
	}
	listenAddr, err := netip.ParseAddrPort(options.Listen)
	if err != nil {
		return nil, fmt.Errorf("invalid listen address: %s", err)
	}
	s.secret = options.Secret
	s.debug = options.Debug
	s.chiMux = chi.NewMux()
	s.chiMux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	s.httpServer = &http.Server{
		Addr:    listenAddr.String(),
		Handler: s.chiMux,
	}
	return s, nil
}

func (s *Server) WithFatalCloser(f func(error)) {
	s.fatalClose = f
}

func (s *Server) WithGatherer(g prometheus.Gatherer) {
	s.gatherer = g
}

func (s *Server) Enabled() bool {
	return s.httpServer != nil
}

// Addr is the bound address once started.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}

func (s *Server) Handler() http.Handler {
	return s.chiMux
}

func (s *Server) routes() {
	s.chiMux.Route("/", func(r chi.Router) {
		if s.secret != "" {
			r.Use(s.auth)
		}
		if s.debug {
			initGoDebugHTTPHandler(r)
		}
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
		s.actionLock.Lock()
		for tag, handler := range s.actionAPI {
			r.Mount("/action/"+tag, handler)
		}
		s.actionLock.Unlock()
	})
}

func (s *Server) Start() error {
	if s.httpServer == nil {
		return nil
	}
	s.routes()
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s fail: %s", s.httpServer.Addr, err)
	}
	s.listener = listener
	go func() {
		err := s.httpServer.Serve(listener)
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error(fmt.Sprintf("api server fail: %s", err))
			if s.fatalClose != nil {
				s.fatalClose(fmt.Errorf("api server fail: %s", err))
			}
		}
	}()
	s.logger.Info(fmt.Sprintf("api server started at %s", listener.Addr()))
	return nil
}

func (s *Server) Close() error {
	if s.httpServer != nil {
		err := s.httpServer.Close()
		if err != nil {
			return err
		}
		s.logger.Info("api server close")
	}
	return nil
}

// MountAction exposes the action's handler under /action/<tag>. It must be
// called before Start.
func (s *Server) MountAction(a MountAction) {
	if a == nil || s.chiMux == nil {
		return
	}
	handler := a.APIHandler()
	if handler == nil {
		return
	}
	s.actionLock.Lock()
	defer s.actionLock.Unlock()
	if s.actionAPI == nil {
		s.actionAPI = make(map[string]http.Handler)
	}
	s.actionAPI[a.Tag()] = handler
}

func (s *Server) auth(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		bearer, token, ok := strings.Cut(authHeader, " ")
		if !ok || bearer != "Bearer" || token != s.secret {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

func initGoDebugHTTPHandler(r chi.Router) {
	r.Route("/debug", func(r chi.Router) {
		r.Get("/gc", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
			go debug.FreeOSMemory()
		})
		r.HandleFunc("/pprof", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/debug/pprof/", http.StatusMovedPermanently)
		})
		r.HandleFunc("/pprof/*", pprof.Index)
		r.HandleFunc("/pprof/cmdline", pprof.Cmdline)
		r.HandleFunc("/pprof/profile", pprof.Profile)
		r.HandleFunc("/pprof/symbol", pprof.Symbol)
		r.HandleFunc("/pprof/trace", pprof.Trace)
	})
}
