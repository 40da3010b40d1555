package inplace

import (
	"context"

	"golang.org/x/net/html"
)

// Task is one anchor's translation. Its outcome is available once Done is
// closed.
type Task struct {
	ID      string
	Service ServiceID

	anchor  *html.Node
	result  *html.Node
	done    chan struct{}
	state   State
	err     error
	skipped bool
}

func newTask(id string, service ServiceID, anchor, result *html.Node) *Task {
	return &Task{
		ID:      id,
		Service: service,
		anchor:  anchor,
		result:  result,
		done:    make(chan struct{}),
		state:   StatePending,
	}
}

// skippedTask is returned for anchors the guard turned away.
func skippedTask(service ServiceID, anchor *html.Node, state State) *Task {
	t := &Task{
		Service: service,
		anchor:  anchor,
		done:    make(chan struct{}),
		state:   state,
		skipped: true,
	}
	close(t.done)
	return t
}

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx is done. It returns ctx.Err() in
// the latter case; the task itself keeps running.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns StatePending until the task finishes, then its final state.
func (t *Task) State() State {
	select {
	case <-t.done:
		return t.state
	default:
		return StatePending
	}
}

// Err returns the failure recorded for the task, if any.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Skipped reports whether the anchor was already translated and nothing was
// dispatched.
func (t *Task) Skipped() bool {
	return t.skipped
}

// Anchor returns the source node.
func (t *Task) Anchor() *html.Node {
	return t.anchor
}

// Result returns the node created for the anchor, or nil for skipped tasks.
func (t *Task) Result() *html.Node {
	return t.result
}
