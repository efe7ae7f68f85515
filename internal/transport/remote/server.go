package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/blockfall/backend/internal/service/bot"
)

// Server answers planner requests with the local planner. The protocol
// carries no sweep state, so answers plan from the spawn column with the
// sweep pinned to column 0.
type Server struct {
	plan        func(bot.Request) bot.Plan
	spawnColumn int
	readTimeout time.Duration
	logger      *zap.Logger
	conns       sync.WaitGroup
}

func NewServer(planner *bot.Planner, spawnColumn int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		plan:        planner.Plan,
		spawnColumn: spawnColumn,
		readTimeout: DefaultReadTimeout,
		logger:      logger.Named("planner-server"),
	}
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections until ctx is cancelled, then waits for
// in-flight requests to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("planner server listening", zap.String("addr", ln.Addr().String()))

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.conns.Wait()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("planner request panicked", zap.Any("panic", r), zap.String("remote", conn.RemoteAddr().String()))
					conn.Close()
				}
			}()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(s.readTimeout))

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		s.logger.Debug("connection closed before request", zap.Error(err))
		return
	}

	resp := s.answer(line)
	payload, _ := json.Marshal(resp)
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		s.logger.Warn("failed to write planner response", zap.Error(err))
	}
}

func (s *Server) answer(line []byte) MoveResponse {
	var req GameRequest
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Warn("rejected planner request", zap.Error(err))
		return MoveResponse{Error: ErrMalformedRequest.Error()}
	}

	board, kind, next, err := req.decode()
	if err != nil {
		s.logger.Warn("rejected planner request", zap.Error(err))
		return MoveResponse{Error: err.Error()}
	}

	plan := s.plan(bot.Request{
		Board:         board,
		Kind:          kind,
		Next:          next,
		SpawnColumn:   s.spawnColumn,
		CurrentColumn: s.spawnColumn,
	})
	return MoveResponse{Column: plan.Column, Rotation: plan.Rotation}
}
