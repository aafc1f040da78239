package farm

import (
	"context"
	"sort"
	"sync"

	"github.com/butecodosdevs/buteco-core/internal/farm/entity"
	farmrepo "github.com/butecodosdevs/buteco-core/internal/farm/repo"
)

type FakeRepo struct {
	mu     sync.Mutex
	nextID int64
	farms  map[int64]*entity.Farm

	ListFunc func(ctx context.Context) ([]entity.FarmSummary, error)
}

func NewFakeRepo() *FakeRepo { return &FakeRepo{farms: map[int64]*entity.Farm{}} }

func (f *FakeRepo) Create(_ context.Context, name string) (*entity.Farm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fm := range f.farms {
		if fm.Name == name {
			return nil, farmrepo.ErrNameTaken
		}
	}
	f.nextID++
	fm := &entity.Farm{ID: f.nextID, Name: name, Items: []entity.Item{}}
	f.farms[fm.ID] = fm
	out := *fm
	return &out, nil
}

func (f *FakeRepo) List(ctx context.Context) ([]entity.FarmSummary, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.FarmSummary{}
	for _, fm := range f.farms {
		out = append(out, entity.FarmSummary{ID: fm.ID, Name: fm.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *FakeRepo) Get(_ context.Context, id int64) (*entity.Farm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fm, ok := f.farms[id]
	if !ok {
		return nil, farmrepo.ErrNotFound
	}
	out := *fm
	out.Items = append([]entity.Item{}, fm.Items...)
	return &out, nil
}

func (f *FakeRepo) AddItem(_ context.Context, farmID int64, it entity.Item) (*entity.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fm, ok := f.farms[farmID]
	if !ok {
		return nil, farmrepo.ErrNotFound
	}
	f.nextID++
	it.ID = f.nextID
	fm.Items = append(fm.Items, it)
	return &it, nil
}

// FakeBalances answers from a map; Err, when set, is returned for every call.
type FakeBalances struct {
	Wallets map[string]float64
	Err     error
}

func (f *FakeBalances) Get(_ context.Context, clientID string) (*entity.Balance, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	v, ok := f.Wallets[clientID]
	if !ok {
		return nil, ErrBalanceNotFound
	}
	return &entity.Balance{UserID: clientID, Balance: v}, nil
}
