package service

import (
	"context"
	"fmt"

	"github.com/AirTechNEO/coworkconnect/internal/database"
	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/sirupsen/logrus"
)

type provisioner struct {
	rooms      database.RoomRepository
	avail      database.AvailabilityRepository
	cache      SearchCache
	clock      *BookingClock
	windowDays int
}

func newProvisioner(rooms database.RoomRepository, avail database.AvailabilityRepository, cache SearchCache, clock *BookingClock, windowDays int) Provisioner {
	if windowDays <= 0 {
		windowDays = entity.WindowDays
	}
	return &provisioner{
		rooms:      rooms,
		avail:      avail,
		cache:      cache,
		clock:      clock,
		windowDays: windowDays,
	}
}

// EnsureWindow tops up every room so that its availability reaches windowDays past today
func (p *provisioner) EnsureWindow(ctx context.Context) (int64, error) {
	rooms, err := p.rooms.GetAll(ctx)
	if err != nil {
		return 0, entity.AsStorage(err)
	}

	var total int64
	for _, room := range rooms {
		n, err := p.ProvisionRoom(ctx, room)
		if err != nil {
			return total, err
		}
		total += n
	}

	if total > 0 && p.cache != nil {
		if err := p.cache.InvalidateAll(ctx); err != nil {
			logrus.WithError(err).Error("Failed to invalidate search cache")
		}
	}

	logrus.WithFields(logrus.Fields{
		"rooms": len(rooms),
		"days":  total,
	}).Info("Availability window provisioned")
	return total, nil
}

// ProvisionRoom creates the missing days of one room, starting tomorrow
func (p *provisioner) ProvisionRoom(ctx context.Context, room *entity.Room) (int64, error) {
	first := p.clock.Tomorrow()
	last := first.AddDate(0, 0, p.windowDays-1)

	latest, ok, err := p.avail.LatestDate(ctx, room.ID)
	if err != nil {
		return 0, entity.AsStorage(err)
	}
	if ok && !latest.Before(first) {
		first = latest.AddDate(0, 0, 1)
	}
	if first.After(last) {
		return 0, nil
	}

	recs := make([]*entity.Availability, 0, p.windowDays)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		recs = append(recs, entity.NewAvailability(room, d))
	}

	n, err := p.avail.CreateBatch(ctx, recs)
	if err != nil {
		return 0, entity.AsStorage(fmt.Errorf("room %d: %w", room.ID, err))
	}
	return n, nil
}
