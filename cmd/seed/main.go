// seed fills the database with random rooms and their availability window
package main

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/AirTechNEO/coworkconnect/config"
	repository "github.com/AirTechNEO/coworkconnect/internal/database/postgres"
	"github.com/AirTechNEO/coworkconnect/internal/entity"
	"github.com/AirTechNEO/coworkconnect/internal/service"
	"github.com/AirTechNEO/coworkconnect/pkg/postgres"
	"github.com/AirTechNEO/coworkconnect/pkg/retry"
	"github.com/sirupsen/logrus"
)

var (
	amenitiesPool = []string{"wifi", "projector", "whiteboard", "air_conditioning", "coffee_machine"}
	tagsPool      = []string{"modern", "cozy", "bright", "spacious", "quiet"}
)

const privateShare = 0.65

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	viperInstance, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}
	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}

	count, err := strconv.Atoi(config.GetEnv("SEED_ROOMS", "50"))
	if err != nil || count <= 0 {
		logrus.Fatalf("SEED_ROOMS must be a positive integer")
	}

	ctx := context.Background()
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(ctx, db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	store := repository.NewStore(db)
	services := service.NewServices(service.Deps{
		Store:      store,
		Retry:      retry.NewRetryManager(cfg.Booking.MaxRetries, cfg.Booking.RetryBaseDelay, service.IsRetryable),
		Clock:      service.NewBookingClock(time.Now, cfg.Booking.Location(), cfg.Booking.SlotClockOffset),
		WindowDays: cfg.Booking.WindowDays,
	})

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < count; i++ {
		room := randomRoom(rng)
		if err := store.Rooms.Create(ctx, room); err != nil {
			logrus.Fatalf("Failed to create room: %v", err)
		}
		days, err := services.Provisioner.ProvisionRoom(ctx, room)
		if err != nil {
			logrus.Fatalf("Failed to provision room %d: %v", room.ID, err)
		}
		logrus.WithFields(logrus.Fields{
			"room_id": room.ID,
			"kind":    room.Kind,
			"size":    room.Size,
			"days":    days,
		}).Debug("Room seeded")
	}

	logrus.Infof("Seeded %d rooms", count)
}

func randomRoom(rng *rand.Rand) *entity.Room {
	kind := entity.RoomKindPublic
	if rng.Float64() < privateShare {
		kind = entity.RoomKindPrivate
	}

	tags := append([]string{string(kind)}, pick(rng, tagsPool, 1+rng.Intn(len(tagsPool)))...)
	described := pick(rng, amenitiesPool, 2)

	return &entity.Room{
		Number:      1 + rng.Intn(500),
		Kind:        kind,
		Size:        5 + rng.Intn(21),
		Description: fmt.Sprintf("This is a %s room with %s.", tagsPool[rng.Intn(len(tagsPool))], strings.Join(described, " and ")),
		Amenities:   pick(rng, amenitiesPool, 1+rng.Intn(len(amenitiesPool))),
		Tags:        tags,
		GoodRatings: rng.Intn(101),
		BadRatings:  rng.Intn(51),
	}
}

// pick returns n distinct items of pool in random order
func pick(rng *rand.Rand, pool []string, n int) []string {
	shuffled := append([]string(nil), pool...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:n]
}
