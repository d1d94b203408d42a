package event

import (
	"context"
	"log/slog"
)

var events = make(chan Event, 256)

// Send publishes an event to the global bus. Publishing never blocks the
// caller; when the bus is saturated the event is dropped.
func Send(e Event) {
	select {
	case events <- e:
	default:
	}
}

type Handler func(ctx context.Context, e Event) error

type Listener struct {
	handlers []Handler
	logger   *slog.Logger
}

func NewListener(logger *slog.Logger) *Listener {
	return &Listener{logger: logger}
}

func (l *Listener) Register(h Handler) {
	l.handlers = append(l.handlers, h)
}

// Listen dispatches events to every registered handler until the context is
// cancelled. Handler errors are logged and do not stop dispatch.
func (l *Listener) Listen(ctx context.Context) error {
	for {
		select {
		case e := <-events:
			for _, h := range l.handlers {
				if err := h(ctx, e); err != nil {
					l.logger.Error("Error running event handler", slog.Any("error", err))
				}
			}
		case <-ctx.Done():
			return nil
		}
	}
}
