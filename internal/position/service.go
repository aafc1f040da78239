package position

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/butecodosdevs/buteco-core/internal/apperror"
	"github.com/butecodosdevs/buteco-core/internal/metrics"
	"github.com/butecodosdevs/buteco-core/internal/position/entity"
	positionrepo "github.com/butecodosdevs/buteco-core/internal/position/repo"
	userentity "github.com/butecodosdevs/buteco-core/internal/user/entity"
	userrepo "github.com/butecodosdevs/buteco-core/internal/user/repo"
)

// Repository is the storage the service needs; *repo.PositionRepo implements it.
type Repository interface {
	Upsert(ctx context.Context, p *entity.Position) (bool, error)
	GetByDiscordID(ctx context.Context, discordID string) (*entity.Position, error)
	List(ctx context.Context) ([]entity.GraphPoint, error)
}

// UserLookup resolves external ids; *userrepo.UserRepo implements it.
type UserLookup interface {
	GetByDiscordID(ctx context.Context, discordID string) (*userentity.User, error)
}

// Client-facing messages.
const (
	msgMissingFields    = "Missing required fields: usuario, x, y"
	msgOutOfRange       = "Coordinates must be between -10 and 10"
	msgUserNotFound     = "User not found. Please register first using /registro"
	msgPositionNotFound = "Political position not found for this user"
)

// SetInput carries a position write. Nil coordinates mean the field was absent.
type SetInput struct {
	Usuario string   `json:"usuario"`
	X       *float64 `json:"x"`
	Y       *float64 `json:"y"`
}

// Validate checks presence and range of every field.
func (in SetInput) Validate() error {
	if strings.TrimSpace(in.Usuario) == "" || in.X == nil || in.Y == nil {
		return apperror.NewValidation(msgMissingFields)
	}
	if !entity.InRange(*in.X) || !entity.InRange(*in.Y) {
		return apperror.NewValidation(msgOutOfRange)
	}
	return nil
}

// Service keeps one political position per user.
type Service struct {
	repo    Repository
	users   UserLookup
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

func NewService(r Repository, users UserLookup, logger *zap.SugaredLogger, m *metrics.Metrics) *Service {
	return &Service{repo: r, users: users, logger: logger, metrics: m}
}

// Set validates in, resolves the user and upserts the position atomically.
func (s *Service) Set(ctx context.Context, in SetInput) (*entity.Position, error) {
	s.logger.Infow("setting political position", "usuario", in.Usuario, "x", in.X, "y", in.Y)

	if err := in.Validate(); err != nil {
		s.logger.Infow("political position rejected", "usuario", in.Usuario, "err", err)
		return nil, err
	}
	discordID := strings.TrimSpace(in.Usuario)

	u, err := s.users.GetByDiscordID(ctx, discordID)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			s.logger.Infow("user not found", "usuario", discordID)
			return nil, apperror.NewNotFound(msgUserNotFound)
		}
		return nil, apperror.Wrap(err, "lookup user")
	}
	s.logger.Debugw("found user", "user_id", u.ID, "name", u.Name)

	p := &entity.Position{
		ID:     uuid.New(),
		UserID: u.ID,
		X:      *in.X,
		Y:      *in.Y,
	}
	created, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return nil, apperror.Wrap(err, "upsert political position")
	}
	p.DiscordID = u.DiscordID
	p.Name = u.Name
	s.metrics.PositionWritten(created)

	s.logger.Infow("political position set", "id", p.ID, "usuario", discordID, "created", created)
	return p, nil
}

// Get returns the position of the user with the given external id.
func (s *Service) Get(ctx context.Context, discordID string) (*entity.Position, error) {
	s.logger.Infow("fetching political position", "usuario", discordID)

	p, err := s.repo.GetByDiscordID(ctx, discordID)
	if err != nil {
		if errors.Is(err, positionrepo.ErrNotFound) {
			s.logger.Infow("political position not found", "usuario", discordID)
			return nil, apperror.NewNotFound(msgPositionNotFound)
		}
		return nil, apperror.Wrap(err, "get political position")
	}
	s.logger.Infow("political position retrieved", "id", p.ID, "usuario", discordID)
	return p, nil
}

// List returns every position ordered by display name.
func (s *Service) List(ctx context.Context) ([]entity.GraphPoint, error) {
	s.logger.Infow("fetching all political positions")

	points, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, "list political positions")
	}
	s.logger.Infow("political positions retrieved", "count", len(points))
	return points, nil
}
