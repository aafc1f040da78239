package position

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/butecodosdevs/buteco-core/internal/position/entity"
	positionrepo "github.com/butecodosdevs/buteco-core/internal/position/repo"
	userentity "github.com/butecodosdevs/buteco-core/internal/user/entity"
	userrepo "github.com/butecodosdevs/buteco-core/internal/user/repo"
)

// FakeUsers is an in-memory UserLookup.
type FakeUsers struct {
	ByDiscordID map[string]*userentity.User
	Err         error
}

func NewFakeUsers(users ...*userentity.User) *FakeUsers {
	f := &FakeUsers{ByDiscordID: map[string]*userentity.User{}}
	for _, u := range users {
		f.ByDiscordID[u.DiscordID] = u
	}
	return f
}

func (f *FakeUsers) GetByDiscordID(_ context.Context, discordID string) (*userentity.User, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	u, ok := f.ByDiscordID[discordID]
	if !ok {
		return nil, userrepo.ErrNotFound
	}
	return u, nil
}

// FakePositionRepo keeps rows keyed by user id, mirroring the unique index.
// Func fields override the default behaviour when set.
type FakePositionRepo struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*entity.Position
	users *FakeUsers

	UpsertFunc func(ctx context.Context, p *entity.Position) (bool, error)
	GetFunc    func(ctx context.Context, discordID string) (*entity.Position, error)
	ListFunc   func(ctx context.Context) ([]entity.GraphPoint, error)
}

func NewFakePositionRepo(users *FakeUsers) *FakePositionRepo {
	return &FakePositionRepo{rows: map[uuid.UUID]*entity.Position{}, users: users}
}

func (f *FakePositionRepo) Upsert(ctx context.Context, p *entity.Position) (bool, error) {
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, p)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := f.rows[p.UserID]; ok {
		existing.X, existing.Y, existing.UpdatedAt = p.X, p.Y, now
		p.ID, p.CreatedAt, p.UpdatedAt = existing.ID, existing.CreatedAt, existing.UpdatedAt
		return false, nil
	}
	p.CreatedAt, p.UpdatedAt = now, now
	row := *p
	f.rows[p.UserID] = &row
	return true, nil
}

func (f *FakePositionRepo) GetByDiscordID(ctx context.Context, discordID string) (*entity.Position, error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx, discordID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users.ByDiscordID[discordID]
	if !ok {
		return nil, positionrepo.ErrNotFound
	}
	row, ok := f.rows[u.ID]
	if !ok {
		return nil, positionrepo.ErrNotFound
	}
	out := *row
	out.DiscordID, out.Name = u.DiscordID, u.Name
	return &out, nil
}

func (f *FakePositionRepo) List(ctx context.Context) ([]entity.GraphPoint, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	points := []entity.GraphPoint{}
	for _, u := range f.users.ByDiscordID {
		if row, ok := f.rows[u.ID]; ok {
			points = append(points, entity.GraphPoint{DiscordID: u.DiscordID, Name: u.Name, X: row.X, Y: row.Y})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Name < points[j].Name })
	return points, nil
}

func (f *FakePositionRepo) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func ptr(v float64) *float64 { return &v }
