package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/Punk/internal/core"
	"github.com/dkeye/Punk/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Changes is notified after every mutation that should reach disk.
type Changes interface {
	Request()
}

type nopChanges struct{}

func (nopChanges) Request() {}

func orNop(c Changes) Changes {
	if c == nil {
		return nopChanges{}
	}
	return c
}

// Persister writes whole-table snapshots taken from memory, so disk is
// never ahead of the in-memory tables. Requests arriving while a save is
// pending coalesce into one write.
type Persister struct {
	Store core.Store
	Rooms *RoomManager
	Users *Users

	Debounce      time.Duration
	RetryInterval time.Duration

	kick chan struct{}
	mu   sync.Mutex
}

func NewPersister(store core.Store, debounce, retry time.Duration) *Persister {
	if retry <= 0 {
		retry = 5 * time.Second
	}
	return &Persister{
		Store:         store,
		Debounce:      debounce,
		RetryInterval: retry,
		kick:          make(chan struct{}, 1),
	}
}

func (p *Persister) Request() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Load fills the room and user tables from the store.
func (p *Persister) Load(ctx context.Context) error {
	rooms, err := p.Store.LoadAllRooms(ctx)
	if err != nil {
		return fmt.Errorf("load rooms: %w", err)
	}
	users, err := p.Store.LoadAllUsers(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	p.Rooms.Load(rooms)
	p.Users.Load(users)
	return nil
}

// Flush saves both tables now.
func (p *Persister) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	roomErr := p.Store.SaveAllRooms(ctx, p.Rooms.Snapshot())
	metrics.PersistDuration.WithLabelValues("rooms").Observe(time.Since(start).Seconds())
	if roomErr != nil {
		metrics.PersistFailures.WithLabelValues("rooms").Inc()
		roomErr = fmt.Errorf("save rooms: %w", roomErr)
	}

	start = time.Now()
	userErr := p.Store.SaveAllUsers(ctx, p.Users.Snapshot())
	metrics.PersistDuration.WithLabelValues("users").Observe(time.Since(start).Seconds())
	if userErr != nil {
		metrics.PersistFailures.WithLabelValues("users").Inc()
		userErr = fmt.Errorf("save users: %w", userErr)
	}
	return errors.Join(roomErr, userErr)
}

// Run saves on request until ctx ends, then writes a final snapshot.
// Failed saves are logged and retried; they never stop the loop.
func (p *Persister) Run(ctx context.Context) {
	var retry <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := p.Flush(final); err != nil {
				log.Error().Err(err).Str("module", "app.persist").Msg("final snapshot failed")
			}
			cancel()
			return
		case <-p.kick:
		case <-retry:
		}

		if p.Debounce > 0 {
			select {
			case <-time.After(p.Debounce):
			case <-ctx.Done():
				continue
			}
		}
		select {
		case <-p.kick:
		default:
		}

		if err := p.Flush(ctx); err != nil {
			log.Error().Err(err).Str("module", "app.persist").Dur("retry_in", p.RetryInterval).Msg("snapshot failed")
			retry = time.After(p.RetryInterval)
			continue
		}
		retry = nil
		log.Debug().Str("module", "app.persist").Msg("snapshot saved")
	}
}
