package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/tikarammardi/ledis/app/resp"
)

// Server represents a Redis-compatible server
type Server struct {
	processor CommandProcessor
	config    Config
	logger    *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	sessions map[string]net.Conn
	wg       sync.WaitGroup
}

// Config interface for server configuration
type Config interface {
	GetAddress() string
}

// CommandProcessor interface for processing commands
type CommandProcessor interface {
	Process(session string, frame resp.RespValue) resp.RespValue
	CleanupSession(session string)
}

// NewServer creates a new Redis server
func NewServer(processor CommandProcessor, config Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		processor: processor,
		config:    config,
		logger:    logger.With("component", "server"),
		sessions:  make(map[string]net.Conn),
	}
}

// Start binds the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	address := s.config.GetAddress()
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to bind to %s: %w", address, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is done, then closes the
// listener and every live session and waits for their goroutines.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.logger.Info("listening", "address", listener.Addr().String())

	stop := context.AfterFunc(ctx, func() { _ = s.Stop() })
	defer stop()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 0

	for {
		conn, err := backoff.RetryNotifyWithData(func() (net.Conn, error) {
			conn, err := listener.Accept()
			if errors.Is(err, net.ErrClosed) {
				return nil, backoff.Permanent(err)
			}
			return conn, err
		}, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
			s.logger.Warn("accept failed, retrying", "error", err, "wait", wait)
		})
		if err != nil {
			s.wg.Wait()
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				s.logger.Info("server stopped")
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		session := uuid.NewString()
		if !s.track(session, conn) {
			_ = conn.Close()
			continue
		}
		s.wg.Add(1)
		go s.handleConnection(session, conn)
	}
}

// Addr returns the address the server listens on, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener and every open session.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for session, conn := range s.sessions {
		_ = conn.Close()
		delete(s.sessions, session)
	}
	s.sessions = nil
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) track(session string, conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		return false
	}
	s.sessions[session] = conn
	return true
}

func (s *Server) untrack(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, session)
}

// handleConnection serves one client until it disconnects. Replies are
// flushed once no further pipelined request is buffered.
func (s *Server) handleConnection(session string, conn net.Conn) {
	logger := s.logger.With("session", session, "remote", conn.RemoteAddr().String())
	logger.Debug("session opened")
	defer func() {
		s.processor.CleanupSession(session)
		s.untrack(session)
		_ = conn.Close()
		logger.Debug("session closed")
		s.wg.Done()
	}()

	reader := bufio.NewReader(conn)
	var writer resp.Writer = resp.NewResponseWriter(conn)

	for {
		var reply resp.RespValue
		frame, err := resp.ParseRESP(reader)
		switch {
		case err == nil:
			reply = s.processor.Process(session, frame)
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return
		case resp.IsProtocolError(err):
			logger.Warn("protocol error", "error", err)
			reply = resp.Errorf("ERR Protocol error: %v", resp.ErrorKind(err))
		default:
			if !errors.Is(err, net.ErrClosed) {
				logger.Warn("read failed", "error", err)
			}
			return
		}

		if err := writer.WriteValue(reply); err != nil {
			logger.Warn("write failed", "error", err)
			return
		}
		if reader.Buffered() > 0 {
			continue
		}
		if err := writer.Flush(); err != nil {
			logger.Warn("flush failed", "error", err)
			return
		}
	}
}
