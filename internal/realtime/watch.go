package realtime

import "context"

// Watch implements a live query: it emits query's snapshot once, then again
// after every event on sub, until ctx ends or emit fails. The caller owns sub.
func Watch[T any](ctx context.Context, sub *Subscription, query func(context.Context) (T, error), emit func(T) error) error {
	snapshot, err := query(ctx)
	if err != nil {
		return err
	}
	if err := emit(snapshot); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-sub.Events():
			if !ok {
				return nil
			}
			snapshot, err := query(ctx)
			if err != nil {
				return err
			}
			if err := emit(snapshot); err != nil {
				return err
			}
		}
	}
}
