package bot

import "context"

// Handler turns an inbound message into an optional reply.
type Handler interface {
	Handle(ctx context.Context, msg Message) (Reply, bool)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg Message) (Reply, bool)

func (f HandlerFunc) Handle(ctx context.Context, msg Message) (Reply, bool) {
	return f(ctx, msg)
}

// Middleware decorates a Handler.
type Middleware func(Handler) Handler

// Chain wraps h so the first middleware runs outermost.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}

var _ Handler = (*Router)(nil)
