package challenge

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/butecodosdevs/buteco-core/internal/apperror"
	"github.com/butecodosdevs/buteco-core/internal/challenge/entity"
	challengerepo "github.com/butecodosdevs/buteco-core/internal/challenge/repo"
	"github.com/butecodosdevs/buteco-core/internal/metrics"
)

// Repository is the storage the service needs; *repo.ChallengeRepo implements it.
type Repository interface {
	Create(ctx context.Context, c *entity.Challenge) error
	Get(ctx context.Context, id int64) (*entity.Challenge, error)
	Transition(ctx context.Context, id int64, from, to entity.Status) (*entity.Challenge, error)
	IncrementScore(ctx context.Context, id int64, userID string) (*entity.Challenge, error)
	ListByUser(ctx context.Context, userID string, status entity.Status) ([]entity.Challenge, error)
	ListByChannel(ctx context.Context, channelID string, status entity.Status) ([]entity.Challenge, error)
}

const (
	msgChallengerRequired = "Challenger ID is required"
	msgChallengedRequired = "Challenged ID is required"
	msgChannelRequired    = "Channel ID is required"
	msgUserRequired       = "User ID is required"
	msgDescriptionTooLong = "Description must be at most 500 characters"
	msgSelfChallenge      = "You cannot challenge yourself!"
	msgActiveExists       = "There is already an active challenge between these users!"
	msgNotFound           = "Challenge not found!"
	msgNotParticipant     = "User is not part of this challenge!"
	msgAcceptNotPending   = "Only pending challenges can be accepted!"
	msgRejectNotPending   = "Only pending challenges can be rejected!"
	msgScoreNotActive     = "Only active challenges can have scores updated!"
	msgCloseNotActive     = "Only active challenges can be closed!"
)

// CreateInput is the payload of POST /challenge/create.
type CreateInput struct {
	ChallengerID string  `json:"challengerId"`
	ChallengedID string  `json:"challengedId"`
	ChannelID    string  `json:"channelId"`
	Description  *string `json:"description"`
}

func (in *CreateInput) normalize() {
	in.ChallengerID = strings.TrimSpace(in.ChallengerID)
	in.ChallengedID = strings.TrimSpace(in.ChallengedID)
	in.ChannelID = strings.TrimSpace(in.ChannelID)
}

// Validate checks required fields and the self-challenge rule.
func (in CreateInput) Validate() error {
	switch {
	case strings.TrimSpace(in.ChallengerID) == "":
		return apperror.NewValidation(msgChallengerRequired)
	case strings.TrimSpace(in.ChallengedID) == "":
		return apperror.NewValidation(msgChallengedRequired)
	case strings.TrimSpace(in.ChannelID) == "":
		return apperror.NewValidation(msgChannelRequired)
	case in.Description != nil && utf8.RuneCountInString(*in.Description) > entity.MaxDescriptionLen:
		return apperror.NewValidation(msgDescriptionTooLong)
	case strings.TrimSpace(in.ChallengerID) == strings.TrimSpace(in.ChallengedID):
		return apperror.NewValidation(msgSelfChallenge)
	}
	return nil
}

type Service struct {
	repo    Repository
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

func NewService(r Repository, logger *zap.SugaredLogger, m *metrics.Metrics) *Service {
	return &Service{repo: r, logger: logger, metrics: m}
}

// Create opens a PENDING challenge.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Challenge, error) {
	s.logger.Infow("creating challenge", "challenger", in.ChallengerID, "challenged", in.ChallengedID, "channel", in.ChannelID)

	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.normalize()

	c := &entity.Challenge{
		ChallengerID: in.ChallengerID,
		ChallengedID: in.ChallengedID,
		ChannelID:    in.ChannelID,
		Description:  in.Description,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, challengerepo.ErrActiveExists) {
			return nil, apperror.NewConflict(msgActiveExists)
		}
		return nil, apperror.Wrap(err, "create challenge")
	}
	s.metrics.ChallengeTransition(string(c.Status))
	s.logger.Infow("challenge created", "id", c.ID)
	return c, nil
}

// Accept moves a PENDING challenge to ACTIVE.
func (s *Service) Accept(ctx context.Context, id int64) (*entity.Challenge, error) {
	return s.transition(ctx, id, entity.StatusPending, entity.StatusActive, msgAcceptNotPending)
}

// Reject moves a PENDING challenge to REJECTED.
func (s *Service) Reject(ctx context.Context, id int64) (*entity.Challenge, error) {
	return s.transition(ctx, id, entity.StatusPending, entity.StatusRejected, msgRejectNotPending)
}

// Close moves an ACTIVE challenge to COMPLETED and stamps completion time.
func (s *Service) Close(ctx context.Context, id int64) (*entity.Challenge, error) {
	c, err := s.transition(ctx, id, entity.StatusActive, entity.StatusCompleted, msgCloseNotActive)
	if err != nil {
		return nil, err
	}
	// an empty winner is a tie
	s.logger.Infow("challenge closed", "id", c.ID, "winner", c.Leader(),
		"challenger_score", c.ChallengerScore, "challenged_score", c.ChallengedScore)
	return c, nil
}

func (s *Service) transition(ctx context.Context, id int64, from, to entity.Status, wrongState string) (*entity.Challenge, error) {
	s.logger.Infow("challenge transition", "id", id, "from", from, "to", to)

	c, err := s.repo.Transition(ctx, id, from, to)
	switch {
	case err == nil:
		s.metrics.ChallengeTransition(string(to))
		s.logger.Infow("challenge transitioned", "id", id, "status", c.Status)
		return c, nil
	case errors.Is(err, challengerepo.ErrActiveExists):
		return nil, apperror.NewConflict(msgActiveExists)
	case errors.Is(err, challengerepo.ErrNoTransition):
		if _, gerr := s.get(ctx, id); gerr != nil {
			return nil, gerr
		}
		s.logger.Infow("challenge transition refused", "id", id, "from", from, "to", to)
		return nil, apperror.NewInvalidState(wrongState)
	default:
		return nil, apperror.Wrap(err, "transition challenge")
	}
}

// IncrementScore adds one point to the side userID plays.
func (s *Service) IncrementScore(ctx context.Context, id int64, userID string) (*entity.Challenge, error) {
	userID = strings.TrimSpace(userID)
	s.logger.Infow("incrementing challenge score", "id", id, "user", userID)
	if userID == "" {
		return nil, apperror.NewValidation(msgUserRequired)
	}

	c, err := s.repo.IncrementScore(ctx, id, userID)
	if err == nil {
		s.logger.Infow("challenge score incremented", "id", id,
			"challenger_score", c.ChallengerScore, "challenged_score", c.ChallengedScore)
		return c, nil
	}
	if !errors.Is(err, challengerepo.ErrNoTransition) {
		return nil, apperror.Wrap(err, "increment challenge score")
	}

	cur, gerr := s.get(ctx, id)
	if gerr != nil {
		return nil, gerr
	}
	if cur.Status == entity.StatusActive && !cur.Involves(userID) {
		return nil, apperror.NewValidation(msgNotParticipant)
	}
	// inactive, or accepted between the update and the read
	return nil, apperror.NewInvalidState(msgScoreNotActive)
}

// Get returns one challenge.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Challenge, error) {
	s.logger.Debugw("fetching challenge", "id", id)
	return s.get(ctx, id)
}

func (s *Service) get(ctx context.Context, id int64) (*entity.Challenge, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, challengerepo.ErrNotFound) {
			return nil, apperror.NewNotFound(msgNotFound)
		}
		return nil, apperror.Wrap(err, "get challenge")
	}
	return c, nil
}

// ActiveForUser lists ACTIVE challenges the user plays in.
func (s *Service) ActiveForUser(ctx context.Context, userID string) ([]entity.Challenge, error) {
	return s.listByUser(ctx, userID, entity.StatusActive)
}

// PendingForUser lists PENDING challenges the user plays in.
func (s *Service) PendingForUser(ctx context.Context, userID string) ([]entity.Challenge, error) {
	return s.listByUser(ctx, userID, entity.StatusPending)
}

// AllForUser lists every challenge the user ever played in, newest first.
func (s *Service) AllForUser(ctx context.Context, userID string) ([]entity.Challenge, error) {
	return s.listByUser(ctx, userID, "")
}

func (s *Service) listByUser(ctx context.Context, userID string, status entity.Status) ([]entity.Challenge, error) {
	out, err := s.repo.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, apperror.Wrap(err, "list challenges for user")
	}
	s.logger.Debugw("challenges for user", "user", userID, "status", status, "count", len(out))
	return out, nil
}

// ActiveInChannel lists ACTIVE challenges started in the channel.
func (s *Service) ActiveInChannel(ctx context.Context, channelID string) ([]entity.Challenge, error) {
	out, err := s.repo.ListByChannel(ctx, channelID, entity.StatusActive)
	if err != nil {
		return nil, apperror.Wrap(err, "list challenges for channel")
	}
	s.logger.Debugw("active challenges in channel", "channel", channelID, "count", len(out))
	return out, nil
}
