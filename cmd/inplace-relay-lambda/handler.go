package main

import (
	"context"
	"encoding/json"

	"github.com/ZaguanLabs/inplace"
	"github.com/ZaguanLabs/inplace/relay"
	"go.uber.org/zap"
)

// WarmupSource identifies scheduled keep-warm events.
const WarmupSource = "warmup"

// WarmupResponse is returned for keep-warm events.
type WarmupResponse struct {
	Status string `json:"status"`
}

type eventHandler func(ctx context.Context, event json.RawMessage) (any, error)

func newEventHandler(h *relay.Handler, logger *zap.Logger) eventHandler {
	return func(ctx context.Context, event json.RawMessage) (any, error) {
		if isWarmupEvent(event) {
			logger.Debug("warmup event")
			return WarmupResponse{Status: "warm"}, nil
		}

		var req inplace.Request
		if err := json.Unmarshal(event, &req); err != nil {
			return nil, err
		}
		return h.Handle(ctx, req)
	}
}

func isWarmupEvent(event json.RawMessage) bool {
	var probe struct {
		Source string `json:"source"`
	}
	if err := json.Unmarshal(event, &probe); err != nil {
		return false
	}
	return probe.Source == WarmupSource
}
