package eventsvc

import (
	"context"

	"github.com/trezcool/courseware/core"
)

// LogPublisher only logs events. Used when no broker is configured.
type LogPublisher struct {
	logger core.Logger
}

var _ core.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger core.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, events ...core.Event) error {
	for _, evt := range events {
		p.logger.Debug("event: "+evt.Type, map[string]interface{}{"key": evt.Key, "data": evt.Data})
	}
	return nil
}
