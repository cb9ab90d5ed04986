package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/stretchr/testify/assert"
)

type countingProvisioner struct {
	calls int32
	err   error
}

func (p *countingProvisioner) EnsureWindow(ctx context.Context) (int64, error) {
	atomic.AddInt32(&p.calls, 1)
	return 1, p.err
}

func (p *countingProvisioner) ProvisionRoom(ctx context.Context, room *entity.Room) (int64, error) {
	return 0, nil
}

func TestProvisionWorker_RunsOnEveryTick(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "provisioning succeeds"},
		{name: "provisioning fails", err: errors.New("storage down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &countingProvisioner{err: tt.err}
			w := NewProvisionWorker(p, 5*time.Millisecond)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				w.Start(ctx)
				close(done)
			}()

			assert.Eventually(t, func() bool {
				return atomic.LoadInt32(&p.calls) >= 3
			}, time.Second, time.Millisecond)

			cancel()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("worker did not stop")
			}
		})
	}
}
