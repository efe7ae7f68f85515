package bot

import (
	"context"
)

// Strategy chooses a placement for a piece. The local Planner and the remote
// planner client both satisfy it.
type Strategy interface {
	Choose(ctx context.Context, req Request) (Plan, error)
}

// Choose runs the local search. It never fails.
func (p *Planner) Choose(_ context.Context, req Request) (Plan, error) {
	return p.Plan(req), nil
}
