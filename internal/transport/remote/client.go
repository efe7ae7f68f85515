package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/iamasit07/blockfall/backend/internal/domain"
	"github.com/iamasit07/blockfall/backend/internal/service/bot"
)

const (
	DefaultConnectTimeout = 2 * time.Second
	DefaultReadTimeout    = 5 * time.Second
)

// Client asks a planner server for placements. It opens one connection per
// request and satisfies bot.Strategy.
type Client struct {
	Addr           string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

func NewClient(addr string) *Client {
	return &Client{
		Addr:           addr,
		ConnectTimeout: DefaultConnectTimeout,
		ReadTimeout:    DefaultReadTimeout,
	}
}

func (c *Client) Choose(ctx context.Context, req bot.Request) (bot.Plan, error) {
	var next domain.Shape
	if req.Next != nil {
		next = domain.ShapeOf(*req.Next, 0)
	}
	resp, err := c.RequestMove(ctx, newGameRequest(req.Board, domain.ShapeOf(req.Kind, 0), next))
	if err != nil {
		return bot.Plan{}, err
	}
	return bot.Plan{Column: resp.Column, Rotation: resp.Rotation, Found: true}, nil
}

// RequestMove sends one request and waits for its single-line answer.
func (c *Client) RequestMove(ctx context.Context, game GameRequest) (MoveResponse, error) {
	dialer := net.Dialer{Timeout: c.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.Addr)
	if err != nil {
		return MoveResponse{}, fmt.Errorf("dial planner %s: %w", c.Addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.ReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return MoveResponse{}, err
	}

	payload, err := json.Marshal(game)
	if err != nil {
		return MoveResponse{}, err
	}
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return MoveResponse{}, fmt.Errorf("send planner request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		if errors.Is(err, io.EOF) {
			return MoveResponse{}, ErrEmptyResponse
		}
		return MoveResponse{}, fmt.Errorf("read planner response: %w", err)
	}

	var resp MoveResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return MoveResponse{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if resp.Error != "" {
		return MoveResponse{}, fmt.Errorf("planner rejected request: %s", resp.Error)
	}
	return resp, nil
}
