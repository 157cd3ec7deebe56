package forest

import (
	"context"
	"time"
)

// Reveal waits delay and then hands each tree's vote to emit in seed order,
// pausing step between votes. It stops early when ctx is done or emit fails.
func Reveal(ctx context.Context, res ForestResult, delay, step time.Duration, emit func(TreeResult) error) error {
	if err := sleep(ctx, delay); err != nil {
		return err
	}
	for i, tr := range res.Trees {
		if i > 0 {
			if err := sleep(ctx, step); err != nil {
				return err
			}
		}
		if err := emit(tr); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
