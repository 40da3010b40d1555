package inplace

import (
	"context"
	"sync"

	"golang.org/x/net/html"
)

// Summary counts task outcomes.
type Summary struct {
	Total     int
	Committed int
	Failed    int
	Skipped   int
}

// TranslateAll starts one task per anchor. The service is validated once up
// front; configuration errors for individual anchors (a missing credential,
// a detached node) stop the fan-out and are returned with the tasks already
// started.
func (o *Overlay) TranslateAll(ctx context.Context, anchors []*html.Node, service ServiceID, credential string) ([]*Task, error) {
	if _, err := o.registry.Lookup(service); err != nil {
		return nil, err
	}

	tasks := make([]*Task, 0, len(anchors))
	for _, anchor := range anchors {
		task, err := o.TranslateAnchor(ctx, anchor, service, credential)
		if err != nil {
			return tasks, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// WaitAll waits for every task and summarizes the outcomes. If ctx is done
// first it returns ctx.Err() with the tasks finished so far counted.
func WaitAll(ctx context.Context, tasks []*Task) (Summary, error) {
	var wg sync.WaitGroup
	finished := make(chan *Task, len(tasks))

	for _, t := range tasks {
		wg.Add(1)
		go func(t *Task) {
			defer wg.Done()
			select {
			case <-t.Done():
				finished <- t
			case <-ctx.Done():
			}
		}(t)
	}

	go func() {
		wg.Wait()
		close(finished)
	}()

	summary := Summary{Total: len(tasks)}
	for t := range finished {
		switch {
		case t.Skipped():
			summary.Skipped++
		case t.State() == StateCommitted:
			summary.Committed++
		case t.State() == StateFailed:
			summary.Failed++
		}
	}

	return summary, ctx.Err()
}
