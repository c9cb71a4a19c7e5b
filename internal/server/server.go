// Package server serves a rendered report on a loopback port.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Server serves one in-memory document over HTTP
type Server struct {
	listener net.Listener
	server   *http.Server
	filename string
	done     chan struct{}
}

// Start listens on a free loopback port and serves content at /filename.
func Start(content []byte, filename, contentType string) (*Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to find port: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/"+filename, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(content)
	})

	srv := &Server{
		listener: listener,
		filename: filename,
		server:   &http.Server{Handler: mux},
		done:     make(chan struct{}),
	}

	go func() {
		defer close(srv.done)
		_ = srv.server.Serve(listener)
	}()

	return srv, nil
}

// URL returns the URL of the served document
func (s *Server) URL() string {
	return fmt.Sprintf("http://%s/%s", s.listener.Addr().String(), s.filename)
}

// Stop shuts the server down and waits for the serve loop to exit.
func (s *Server) Stop(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	<-s.done
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
