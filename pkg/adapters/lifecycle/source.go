package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/ahkcurate/pkg/review"
)

type catalogSource struct {
	events <-chan review.Event
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits catalog rescan events.
func NewSource(events <-chan review.Event) lifecycle.Source {
	return &catalogSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *catalogSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the catalog channel closes.
func (s *catalogSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
