package worker

import (
	"context"
	"time"

	"github.com/AirTechNEO/coworkconnect/internal/service"

	"github.com/sirupsen/logrus"
)

// ProvisionWorker периодически продлевает окно доступности комнат
type ProvisionWorker struct {
	provisioner service.Provisioner
	interval    time.Duration
}

func NewProvisionWorker(provisioner service.Provisioner, interval time.Duration) *ProvisionWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ProvisionWorker{
		provisioner: provisioner,
		interval:    interval,
	}
}

func (w *ProvisionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.WithField("interval", w.interval.String()).Info("Provision worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Provision worker stopped")
			return
		case <-ticker.C:
			w.provision(ctx)
		}
	}
}

// provision добавляет недостающие дни, ошибки только логируются
func (w *ProvisionWorker) provision(ctx context.Context) {
	created, err := w.provisioner.EnsureWindow(ctx)
	if err != nil {
		logrus.Errorf("Failed to provision availability window: %v", err)
		return
	}

	if created == 0 {
		logrus.Debug("Availability window already complete")
		return
	}
	logrus.Infof("Provisioned %d availability days", created)
}
