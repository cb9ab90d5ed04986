package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/AirTechNEO/coworkconnect/internal/database"
	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageSize = 20
	searchHorizon   = 13 * 7 // days after tomorrow
)

var listItem = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// SearchQuery представляет параметры поиска комнат из строки запроса
type SearchQuery struct {
	Page      int    `form:"pageNb"`
	DateFrom  string `form:"dateFrom"`
	DateTo    string `form:"dateTo"`
	RoomSize  int    `form:"roomSize" binding:"min=0"`
	Amenities string `form:"amenities" binding:"omitempty,slugs"`
	Tags      string `form:"tags" binding:"omitempty,slugs"`
}

type roomService struct {
	rooms    database.RoomRepository
	cache    SearchCache
	clock    *BookingClock
	pageSize int
}

func newRoomService(rooms database.RoomRepository, cache SearchCache, clock *BookingClock, pageSize int) RoomService {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &roomService{
		rooms:    rooms,
		cache:    cache,
		clock:    clock,
		pageSize: pageSize,
	}
}

// Search returns one page of the rooms that still have an open cell in the date range
func (s *roomService) Search(ctx context.Context, query *SearchQuery) (*entity.RoomPage, error) {
	filter, err := s.normalize(query)
	if err != nil {
		return nil, err
	}

	rooms, err := s.lookup(ctx, filter)
	if err != nil {
		return nil, entity.AsStorage(err)
	}
	if rooms == nil {
		rooms = []*entity.Room{}
	}

	total := len(rooms)
	start := filter.Page * s.pageSize
	if total > 0 && start >= total {
		return nil, entity.Validationf("Requested page exceeds available entries: %d >= %d", start, total)
	}
	end := start + s.pageSize
	if end > total {
		end = total
	}
	if start > end {
		start = end
	}

	return &entity.RoomPage{
		Page:         filter.Page,
		TotalPages:   (total + s.pageSize - 1) / s.pageSize,
		TotalResults: total,
		Results:      rooms[start:end],
	}, nil
}

func (s *roomService) lookup(ctx context.Context, filter *entity.RoomSearch) ([]*entity.Room, error) {
	if s.cache != nil {
		rooms, ok, err := s.cache.Get(ctx, filter)
		if err != nil {
			logrus.WithError(err).Warn("Search cache unavailable, querying storage")
		} else if ok {
			return rooms, nil
		}
	}

	rooms, err := s.rooms.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, filter, rooms); err != nil {
			logrus.WithError(err).Warn("Failed to cache search results")
		}
	}
	return rooms, nil
}

func (s *roomService) normalize(query *SearchQuery) (*entity.RoomSearch, error) {
	minDate := s.clock.Tomorrow()
	maxDate := minDate.AddDate(0, 0, searchHorizon)

	filter := &entity.RoomSearch{
		Page:     query.Page,
		DateFrom: minDate,
		DateTo:   maxDate,
		RoomSize: query.RoomSize,
	}
	if filter.Page < 0 {
		filter.Page = 0
	}
	if filter.RoomSize < 0 {
		return nil, entity.Validationf("Room size must be a positive integer")
	}

	if query.DateFrom != "" {
		from, err := entity.ParseDate(query.DateFrom)
		if err != nil {
			return nil, entity.Validationf("dateFrom must be formatted as %s", entity.DateLayout)
		}
		if from.After(minDate) {
			filter.DateFrom = from
		}
	}
	if query.DateTo != "" {
		to, err := entity.ParseDate(query.DateTo)
		if err != nil {
			return nil, entity.Validationf("dateTo must be formatted as %s", entity.DateLayout)
		}
		if to.Before(maxDate) {
			filter.DateTo = to
		}
	}
	if filter.DateFrom.After(filter.DateTo) {
		return nil, entity.Validationf("dateFrom must not be after dateTo")
	}

	var err error
	if filter.Amenities, err = parseList(query.Amenities); err != nil {
		return nil, entity.Validationf("List of amenities must be a list of strings separated by commas")
	}
	if filter.Tags, err = parseList(query.Tags); err != nil {
		return nil, entity.Validationf("List of tags must be a list of strings separated by commas")
	}
	return filter, nil
}

func (s *roomService) GetRoom(ctx context.Context, id int64) (*entity.Room, error) {
	if id <= 0 {
		return nil, entity.Validationf("room id must be positive")
	}
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, entity.AsStorage(err)
	}
	return room, nil
}

// parseList splits a comma separated list, trimming and lower casing every item
func parseList(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		item := strings.ToLower(strings.TrimSpace(p))
		if !listItem.MatchString(item) {
			return nil, entity.ErrInvalidInput
		}
		items = append(items, item)
	}
	return items, nil
}
