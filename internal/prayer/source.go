package prayer

import "context"

// Source produces schedules. Local computes them in-process; other sources
// may consult a remote service.
type Source interface {
	Schedule(ctx context.Context, p Params) (Schedule, error)
}

// Local is the in-process astronomical Source.
type Local struct{}

// Schedule implements Source. It never fails.
func (Local) Schedule(_ context.Context, p Params) (Schedule, error) {
	return Compute(p), nil
}
