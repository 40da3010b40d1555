package relay

import (
	"context"
	"time"

	"github.com/ZaguanLabs/inplace"
)

// LocalChannel delivers requests to a Handler running in the same process.
// Each send runs on its own goroutine and the reply is handed back through a
// channel, so the overlay never shares memory with the handler.
type LocalChannel struct {
	handler *Handler
	timeout time.Duration
}

// LocalOption configures a LocalChannel.
type LocalOption func(*LocalChannel)

// WithLocalTimeout bounds each send. Zero means no bound.
func WithLocalTimeout(d time.Duration) LocalOption {
	return func(c *LocalChannel) {
		c.timeout = d
	}
}

// NewLocalChannel creates an in-process channel for h.
func NewLocalChannel(h *Handler, opts ...LocalOption) *LocalChannel {
	c := &LocalChannel{handler: h}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type localResult struct {
	reply inplace.Reply
	err   error
}

// Send implements inplace.Channel.
func (c *LocalChannel) Send(ctx context.Context, req inplace.Request) (inplace.Reply, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req.Body = append([]byte(nil), req.Body...)
	done := make(chan localResult, 1)
	go func() {
		reply, err := c.handler.Handle(ctx, req)
		done <- localResult{reply: reply, err: err}
	}()

	select {
	case <-ctx.Done():
		return inplace.Reply{}, ctx.Err()
	case res := <-done:
		return res.reply, res.err
	}
}

var _ inplace.Channel = (*LocalChannel)(nil)
