package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingCounter struct {
	mu    sync.Mutex
	calls map[uint]int
	fail  uint
}

func (c *countingCounter) RecountComments(_ context.Context, listID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[uint]int{}
	}
	c.calls[listID]++
	if listID == c.fail {
		return errors.New("db down")
	}
	return nil
}

func TestCounterServiceFlushesOnStop(t *testing.T) {
	counter := &countingCounter{}
	svc := NewCounterService(counter, 10, zap.NewNop())

	svc.ScheduleUpdate(1)
	svc.ScheduleUpdate(2)
	svc.ScheduleUpdate(1)
	svc.Stop()

	assert.Equal(t, map[uint]int{1: 1, 2: 1}, counter.calls)
}

func TestCounterServiceLogsFailuresAndContinues(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	counter := &countingCounter{fail: 3}
	svc := NewCounterService(counter, 10, zap.New(core))

	svc.ScheduleUpdate(3)
	svc.ScheduleUpdate(4)
	svc.Stop()

	assert.Equal(t, 1, counter.calls[4])
	assert.Equal(t, 1, logs.FilterMessage("recount comments failed").Len())
}

func TestCounterServiceStopIsIdempotent(t *testing.T) {
	svc := NewCounterService(&countingCounter{}, 1, zap.NewNop())
	svc.Stop()
	svc.Stop()
}
