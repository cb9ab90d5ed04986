package memory

import (
	"context"
	"sort"
	"time"

	"github.com/AirTechNEO/coworkconnect/internal/entity"
)

type availabilityRepository struct {
	s *storage
}

func (r *availabilityRepository) FetchWindow(ctx context.Context, roomID int64, from, to time.Time) ([]*entity.Availability, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	from, to = entity.DateOf(from), entity.DateOf(to)
	t, inTx := txFrom(ctx)

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	records := make([]*entity.Availability, 0)
	for _, id := range r.s.byRoomDate[roomID] {
		rec := r.s.availabilities[id]
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		if inTx {
			if p, ok := t.records[id]; ok {
				rec = p.rec
			}
		}
		records = append(records, rec.Clone())
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}

func (r *availabilityRepository) UpdateCells(ctx context.Context, rec *entity.Availability) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := time.Now()

	if t, ok := txFrom(ctx); ok {
		r.s.mu.RLock()
		current, found := r.s.availabilities[rec.ID]
		r.s.mu.RUnlock()
		if !found {
			return entity.ErrConcurrentUpdate.Withf("availability %d changed since it was read", rec.ID)
		}

		p, pending := t.records[rec.ID]
		expected := current.Version
		if pending {
			expected = p.rec.Version
		}
		if rec.Version != expected {
			return entity.ErrConcurrentUpdate.Withf("availability %d changed since it was read", rec.ID)
		}

		base := current.Version
		if pending {
			base = p.baseVersion
		}
		rec.Version++
		rec.UpdatedAt = now
		t.records[rec.ID] = &pendingRecord{rec: rec.Clone(), baseVersion: base}
		return nil
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, found := r.s.availabilities[rec.ID]
	if !found || current.Version != rec.Version {
		return entity.ErrConcurrentUpdate.Withf("availability %d changed since it was read", rec.ID)
	}
	rec.Version++
	rec.UpdatedAt = now
	r.s.availabilities[rec.ID] = rec.Clone()
	return nil
}

func (r *availabilityRepository) CreateBatch(ctx context.Context, recs []*entity.Availability) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var created int64
	for _, rec := range recs {
		key := rec.Date.Format(entity.DateLayout)
		days, ok := r.s.byRoomDate[rec.RoomID]
		if !ok {
			days = make(map[string]int64)
			r.s.byRoomDate[rec.RoomID] = days
		}
		if _, exists := days[key]; exists {
			continue
		}

		r.s.nextAvailID++
		c := rec.Clone()
		c.ID = r.s.nextAvailID
		c.Date = entity.DateOf(rec.Date)
		c.Version = 0
		c.UpdatedAt = time.Now()
		r.s.availabilities[c.ID] = c
		days[key] = c.ID
		created++
	}
	return created, nil
}

func (r *availabilityRepository) LatestDate(ctx context.Context, roomID int64) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var (
		latest time.Time
		found  bool
	)
	for _, id := range r.s.byRoomDate[roomID] {
		d := r.s.availabilities[id].Date
		if !found || d.After(latest) {
			latest, found = d, true
		}
	}
	return latest, found, nil
}
