package farm

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/butecodosdevs/buteco-core/internal/apperror"
	"github.com/butecodosdevs/buteco-core/internal/farm/entity"
	farmrepo "github.com/butecodosdevs/buteco-core/internal/farm/repo"
)

// Repository is the storage the service needs; *repo.FarmRepo implements it.
type Repository interface {
	Create(ctx context.Context, name string) (*entity.Farm, error)
	List(ctx context.Context) ([]entity.FarmSummary, error)
	Get(ctx context.Context, id int64) (*entity.Farm, error)
	AddItem(ctx context.Context, farmID int64, it entity.Item) (*entity.Item, error)
}

// Balances reads user wallets; *BalanceClient implements it.
type Balances interface {
	Get(ctx context.Context, clientID string) (*entity.Balance, error)
}

const (
	msgNameRequired       = "Farm name is required"
	msgNameTaken          = "Farm name already taken"
	msgFarmNotFound       = "Farm not found"
	msgInvalidItemType    = "Item type must be one of ANIMAL, LAND, UTILITY"
	msgInvalidAmount      = "Item amount must be between 1 and 2147483647"
	msgBalanceNotFound    = "Balance not found for this user"
	msgBalanceUnavailable = "Balance service unavailable"
)

type Service struct {
	repo     Repository
	balances Balances
	logger   *zap.SugaredLogger
}

func NewService(r Repository, b Balances, logger *zap.SugaredLogger) *Service {
	return &Service{repo: r, balances: b, logger: logger}
}

// Balance proxies a wallet read to the balance service.
func (s *Service) Balance(ctx context.Context, clientID string) (*entity.Balance, error) {
	s.logger.Infow("fetching balance", "client_id", clientID)
	b, err := s.balances.Get(ctx, clientID)
	if err != nil {
		if errors.Is(err, ErrBalanceNotFound) {
			return nil, apperror.NewNotFound(msgBalanceNotFound)
		}
		s.logger.Warnw("balance service failed", "client_id", clientID, "err", err)
		return nil, apperror.NewUpstream(msgBalanceUnavailable, err)
	}
	s.logger.Debugw("balance fetched", "client_id", clientID, "balance", b.Balance)
	return b, nil
}

func (s *Service) CreateFarm(ctx context.Context, name string) (*entity.Farm, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewValidation(msgNameRequired)
	}
	f, err := s.repo.Create(ctx, name)
	if err != nil {
		if errors.Is(err, farmrepo.ErrNameTaken) {
			return nil, apperror.NewConflict(msgNameTaken)
		}
		return nil, apperror.Wrap(err, "create farm")
	}
	s.logger.Infow("farm created", "id", f.ID, "name", f.Name)
	return f, nil
}

// ListFarms returns every farm by name. Items are only loaded by GetFarm.
func (s *Service) ListFarms(ctx context.Context) ([]entity.FarmSummary, error) {
	farms, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, "list farms")
	}
	return farms, nil
}

func (s *Service) GetFarm(ctx context.Context, id int64) (*entity.Farm, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, farmrepo.ErrNotFound) {
			return nil, apperror.NewNotFound(msgFarmNotFound)
		}
		return nil, apperror.Wrap(err, "get farm")
	}
	return f, nil
}

// AddItem attaches a new item to a farm.
func (s *Service) AddItem(ctx context.Context, farmID int64, it entity.Item) (*entity.Item, error) {
	it.Type = entity.ItemType(strings.ToUpper(strings.TrimSpace(string(it.Type))))
	if !it.Type.Valid() {
		return nil, apperror.NewValidation(msgInvalidItemType)
	}
	// farm_items.amount is a Postgres INTEGER
	if it.Amount <= 0 || it.Amount > math.MaxInt32 {
		return nil, apperror.NewValidation(msgInvalidAmount)
	}
	out, err := s.repo.AddItem(ctx, farmID, it)
	if err != nil {
		if errors.Is(err, farmrepo.ErrNotFound) {
			return nil, apperror.NewNotFound(msgFarmNotFound)
		}
		return nil, apperror.Wrap(err, "add farm item")
	}
	s.logger.Infow("farm item added", "farm_id", farmID, "item_id", out.ID, "type", out.Type, "amount", out.Amount)
	return out, nil
}
