package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.storefront.dev/core/task"
	"golang.org/x/net/netutil"
)

// Server bundles an HTTP server with its bound TCP socket.
type Server struct {
	// RawListener is the bound TCP listener of the Server.
	RawListener net.Listener
	// Listener wraps RawListener, limiting the number of concurrently
	// served connections (if configured).
	Listener net.Listener
	// HTTPMux is the http.ServeMux which is served by QueueTasks.
	HTTPMux *http.ServeMux
	// HTTPServer serves HTTPMux over Listener.
	HTTPServer *http.Server
	// ShutdownTimeout bounds the graceful drain of in-flight requests,
	// after which remaining connections are closed.
	ShutdownTimeout time.Duration
	// Ctx is cancelled when the Server begins to shut down.
	Ctx context.Context

	cancel context.CancelFunc
}

// New builds and returns a Server of the given TCP network interface |iface|
// and |port|. |port| may be zero, in which case a random free port is assigned.
// If |maxConns| is positive, at most |maxConns| connections are served at once
// and further connections wait to be accepted.
func New(iface string, port uint16, maxConns int) (*Server, error) {
	var addr = fmt.Sprintf("%s:%d", iface, port)

	var raw, err = net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to bind service address (%s)", addr)
	}
	var ctx, cancel = context.WithCancel(context.Background())

	var srv = &Server{
		RawListener:     raw,
		Listener:        raw,
		HTTPMux:         http.NewServeMux(),
		ShutdownTimeout: 10 * time.Second,
		Ctx:             ctx,
		cancel:          cancel,
	}
	if maxConns > 0 {
		srv.Listener = netutil.LimitListener(raw, maxConns)
	}
	srv.HTTPServer = &http.Server{
		Handler:           srv.HTTPMux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	return srv, nil
}

// Endpoint of the Server.
func (s *Server) Endpoint() string {
	return "http://" + s.RawListener.Addr().String()
}

// QueueTasks serving the HTTP server onto the task.Group. When the Group is
// cancelled, the server stops accepting connections and drains in-flight
// requests before returning.
func (s *Server) QueueTasks(tg *task.Group) {
	tg.Queue("http.Serve", func(context.Context) error {
		if err := s.HTTPServer.Serve(s.Listener); err != http.ErrServerClosed {
			return err
		}
		return nil // Shutdown was called.
	})
	tg.Queue("http.Shutdown", func(groupCtx context.Context) error {
		<-groupCtx.Done() // Block until task.Group is cancelled.

		log.WithField("endpoint", s.Endpoint()).Info("shutting down HTTP server")

		var ctx, cancel = context.WithTimeout(context.Background(), s.ShutdownTimeout)
		defer cancel()

		var err = s.HTTPServer.Shutdown(ctx)
		s.cancel()

		if err == context.DeadlineExceeded {
			log.WithField("timeout", s.ShutdownTimeout).Warn("HTTP server drain timed out; closing connections")
			return s.HTTPServer.Close()
		}
		return err
	})
}
