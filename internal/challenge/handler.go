package challenge

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/butecodosdevs/buteco-core/internal/apperror"
	"github.com/butecodosdevs/buteco-core/internal/challenge/entity"
	"github.com/butecodosdevs/buteco-core/pkg/utilities"
)

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Response is the wire form of a challenge.
type Response struct {
	ID              int64         `json:"id"`
	ChallengerID    string        `json:"challengerId"`
	ChallengedID    string        `json:"challengedId"`
	ChannelID       string        `json:"channelId"`
	Status          entity.Status `json:"status"`
	ChallengerScore int           `json:"challengerScore"`
	ChallengedScore int           `json:"challengedScore"`
	Description     *string       `json:"description"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	CompletedAt     *time.Time    `json:"completedAt"`
}

// IncrementInput is the payload of POST /challenge/{id}/increment.
type IncrementInput struct {
	UserID string `json:"userId"`
}

func toResponse(c *entity.Challenge) Response {
	return Response{
		ID:              c.ID,
		ChallengerID:    c.ChallengerID,
		ChallengedID:    c.ChallengedID,
		ChannelID:       c.ChannelID,
		Status:          c.Status,
		ChallengerScore: c.ChallengerScore,
		ChallengedScore: c.ChallengedScore,
		Description:     c.Description,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		CompletedAt:     c.CompletedAt,
	}
}

func toResponses(cs []entity.Challenge) []Response {
	out := make([]Response, 0, len(cs))
	for i := range cs {
		out = append(out, toResponse(&cs[i]))
	}
	return out
}

// Routes mounts the challenge endpoints; writes go through guard when non-nil.
func (h *Handler) Routes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if guard != nil {
			r.Use(guard)
		}
		r.Post("/create", h.Create)
		r.Post("/{id}/accept", h.Accept)
		r.Post("/{id}/reject", h.Reject)
		r.Post("/{id}/increment", h.Increment)
		r.Post("/{id}/close", h.Close)
	})
	r.Get("/{id}", h.Get)
	r.Get("/user/{userId}/active", h.ActiveForUser)
	r.Get("/user/{userId}/pending", h.PendingForUser)
	r.Get("/user/{userId}/all", h.AllForUser)
	r.Get("/channel/{channelId}/active", h.ActiveInChannel)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Debugw("invalid challenge payload", "err", err)
		apperror.Write(w, h.logger, apperror.NewValidation("Invalid request body"))
		return
	}
	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		apperror.Write(w, h.logger, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.svc.Accept)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.svc.Reject)
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.svc.Close)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.svc.Get)
}

func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var in IncrementInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperror.Write(w, h.logger, apperror.NewValidation(msgUserRequired))
		return
	}
	c, err := h.svc.IncrementScore(r.Context(), id, in.UserID)
	if err != nil {
		apperror.Write(w, h.logger, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) ActiveForUser(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.ActiveForUser, utilities.PathParam(r, "userId"))
}

func (h *Handler) PendingForUser(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.PendingForUser, utilities.PathParam(r, "userId"))
}

func (h *Handler) AllForUser(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.AllForUser, utilities.PathParam(r, "userId"))
}

func (h *Handler) ActiveInChannel(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.svc.ActiveInChannel, utilities.PathParam(r, "channelId"))
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(utilities.PathParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		apperror.Write(w, h.logger, apperror.NewNotFound(msgNotFound))
		return 0, false
	}
	return id, true
}

func (h *Handler) byID(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64) (*entity.Challenge, error)) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	c, err := fn(r.Context(), id)
	if err != nil {
		apperror.Write(w, h.logger, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, key string) ([]entity.Challenge, error), key string) {
	cs, err := fn(r.Context(), key)
	if err != nil {
		apperror.Write(w, h.logger, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, toResponses(cs))
}
