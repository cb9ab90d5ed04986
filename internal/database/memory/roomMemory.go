package memory

import (
	"context"
	"sort"

	"github.com/AirTechNEO/coworkconnect/internal/entity"
)

type roomRepository struct {
	s *storage
}

func (r *roomRepository) Create(ctx context.Context, room *entity.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextRoomID++
	room.ID = r.s.nextRoomID
	r.s.rooms[room.ID] = cloneRoom(room)
	return nil
}

func (r *roomRepository) GetByID(ctx context.Context, id int64) (*entity.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	room, ok := r.s.rooms[id]
	if !ok {
		return nil, entity.ErrRoomNotFound
	}
	return cloneRoom(room), nil
}

func (r *roomRepository) GetAll(ctx context.Context) ([]*entity.Room, error) {
	return r.collect(ctx, func(*entity.Room) bool { return true })
}

func (r *roomRepository) Search(ctx context.Context, filter *entity.RoomSearch) ([]*entity.Room, error) {
	return r.collect(ctx, func(room *entity.Room) bool {
		if room.Size < filter.RoomSize {
			return false
		}
		if !containsAll(room.Amenities, filter.Amenities) || !containsAll(room.Tags, filter.Tags) {
			return false
		}
		for _, id := range r.s.byRoomDate[room.ID] {
			rec := r.s.availabilities[id]
			if rec.Date.Before(filter.DateFrom) || rec.Date.After(filter.DateTo) {
				continue
			}
			if rec.HasOpenCell() {
				return true
			}
		}
		return false
	})
}

func (r *roomRepository) collect(ctx context.Context, match func(*entity.Room) bool) ([]*entity.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rooms := make([]*entity.Room, 0)
	for _, room := range r.s.rooms {
		if match(room) {
			rooms = append(rooms, cloneRoom(room))
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func containsAll(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[h] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}
