package challenge

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/butecodosdevs/buteco-core/internal/challenge/entity"
	challengerepo "github.com/butecodosdevs/buteco-core/internal/challenge/repo"
)

// FakeRepo mirrors the conditional updates of ChallengeRepo in memory.
type FakeRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*entity.Challenge
	clock  func() time.Time

	CreateFunc func(ctx context.Context, c *entity.Challenge) error
	ListFunc   func(ctx context.Context, userID string, status entity.Status) ([]entity.Challenge, error)
}

func NewFakeRepo() *FakeRepo {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var tick int64
	return &FakeRepo{
		rows: map[int64]*entity.Challenge{},
		clock: func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		},
	}
}

func samePair(c *entity.Challenge, a, b string) bool {
	return (c.ChallengerID == a && c.ChallengedID == b) || (c.ChallengerID == b && c.ChallengedID == a)
}

func (f *FakeRepo) activeBetween(a, b string, except int64) bool {
	for id, c := range f.rows {
		if id != except && c.Status == entity.StatusActive && samePair(c, a, b) {
			return true
		}
	}
	return false
}

func (f *FakeRepo) Create(ctx context.Context, c *entity.Challenge) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, c)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activeBetween(c.ChallengerID, c.ChallengedID, 0) {
		return challengerepo.ErrActiveExists
	}
	f.nextID++
	now := f.clock()
	c.ID, c.Status, c.CreatedAt, c.UpdatedAt = f.nextID, entity.StatusPending, now, now
	row := *c
	f.rows[c.ID] = &row
	return nil
}

func (f *FakeRepo) Get(_ context.Context, id int64) (*entity.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return nil, challengerepo.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (f *FakeRepo) Transition(_ context.Context, id int64, from, to entity.Status) (*entity.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok || c.Status != from {
		return nil, challengerepo.ErrNoTransition
	}
	if to == entity.StatusActive && f.activeBetween(c.ChallengerID, c.ChallengedID, id) {
		return nil, challengerepo.ErrActiveExists
	}
	c.Status = to
	c.UpdatedAt = f.clock()
	if to == entity.StatusCompleted {
		done := c.UpdatedAt
		c.CompletedAt = &done
	}
	out := *c
	return &out, nil
}

func (f *FakeRepo) IncrementScore(_ context.Context, id int64, userID string) (*entity.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok || c.Status != entity.StatusActive || !c.Involves(userID) {
		return nil, challengerepo.ErrNoTransition
	}
	if c.ChallengerID == userID {
		c.ChallengerScore++
	} else {
		c.ChallengedScore++
	}
	c.UpdatedAt = f.clock()
	out := *c
	return &out, nil
}

func (f *FakeRepo) ListByUser(ctx context.Context, userID string, status entity.Status) ([]entity.Challenge, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx, userID, status)
	}
	return f.filter(func(c *entity.Challenge) bool {
		return c.Involves(userID) && (status == "" || c.Status == status)
	}), nil
}

func (f *FakeRepo) ListByChannel(_ context.Context, channelID string, status entity.Status) ([]entity.Challenge, error) {
	return f.filter(func(c *entity.Challenge) bool {
		return c.ChannelID == channelID && c.Status == status
	}), nil
}

func (f *FakeRepo) filter(keep func(*entity.Challenge) bool) []entity.Challenge {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.Challenge{}
	for _, c := range f.rows {
		if keep(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
