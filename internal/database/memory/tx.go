package memory

import (
	"context"
	"sort"

	"github.com/AirTechNEO/coworkconnect/internal/entity"
)

type txKey struct{}

// op is a buffered write. check runs for every op before any apply does.
type op struct {
	check func() error
	apply func()
}

type pendingRecord struct {
	rec         *entity.Availability
	baseVersion int64
}

type tx struct {
	records map[int64]*pendingRecord
	ops     []op
	locked  map[int64]bool
}

type txManager struct {
	s *storage
}

// WithinTx buffers every write made with ctx and applies them at the end if no
// availability record changed underneath. Nested calls join the outer unit.
func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*tx); ok {
		return fn(ctx)
	}

	t := &tx{
		records: make(map[int64]*pendingRecord),
		locked:  make(map[int64]bool),
	}
	defer m.unlockAll(t)

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}
	return m.commit(t)
}

func (m *txManager) commit(t *tx) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for id, p := range t.records {
		current, ok := m.s.availabilities[id]
		if !ok || current.Version != p.baseVersion {
			return entity.ErrConcurrentUpdate.Withf("availability %d changed since it was read", id)
		}
	}
	for _, o := range t.ops {
		if o.check == nil {
			continue
		}
		if err := o.check(); err != nil {
			return err
		}
	}

	for id, p := range t.records {
		m.s.availabilities[id] = p.rec.Clone()
	}
	for _, o := range t.ops {
		o.apply()
	}
	return nil
}

func (m *txManager) unlockAll(t *tx) {
	ids := make([]int64, 0, len(t.locked))
	for id := range t.locked {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		m.s.userLocks.Unlock(id)
	}
}

func txFrom(ctx context.Context) (*tx, bool) {
	t, ok := ctx.Value(txKey{}).(*tx)
	return t, ok
}

// write runs the op now, or queues it when ctx carries a unit of work.
// The caller must not hold s.mu.
func (s *storage) write(ctx context.Context, o op) error {
	if t, ok := txFrom(ctx); ok {
		s.mu.RLock()
		var err error
		if o.check != nil {
			err = o.check()
		}
		s.mu.RUnlock()
		if err != nil {
			return err
		}
		t.ops = append(t.ops, o)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if o.check != nil {
		if err := o.check(); err != nil {
			return err
		}
	}
	o.apply()
	return nil
}
