package position

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/butecodosdevs/buteco-core/internal/apperror"
	"github.com/butecodosdevs/buteco-core/internal/position/entity"
	"github.com/butecodosdevs/buteco-core/pkg/utilities"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "political-api"

// Handler exposes the political position endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// PositionResponse is the wire form of a position.
type PositionResponse struct {
	ID        string    `json:"id"`
	Usuario   string    `json:"usuario"`
	DiscordID string    `json:"discordId"`
	Name      string    `json:"name"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GraphResponse is the aggregate chart read.
type GraphResponse struct {
	Positions []entity.GraphPoint `json:"positions"`
	Count     int                 `json:"count"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func toResponse(p *entity.Position) PositionResponse {
	return PositionResponse{
		ID:        p.ID.String(),
		Usuario:   p.DiscordID,
		DiscordID: p.DiscordID,
		Name:      p.Name,
		X:         p.X,
		Y:         p.Y,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.logger.Debugw("health check requested")
	apperror.WriteJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Service: ServiceName})
}

// Set handles POST /definir_posicao_politica.
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	var in SetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Debugw("invalid political position payload", "err", err)
		apperror.Write(w, h.logger, apperror.NewValidation(msgMissingFields))
		return
	}
	p, err := h.svc.Set(r.Context(), in)
	if err != nil {
		apperror.Write(w, h.logger, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, toResponse(p))
}

// Get handles GET /ver_posicao_politica/{usuario}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), utilities.PathParam(r, "usuario"))
	if err != nil {
		apperror.Write(w, h.logger, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, toResponse(p))
}

// Graph handles GET /grafico_politico.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	points, err := h.svc.List(r.Context())
	if err != nil {
		apperror.Write(w, h.logger, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, GraphResponse{Positions: points, Count: len(points)})
}

// GraphImage handles GET /grafico_politico.png.
func (h *Handler) GraphImage(w http.ResponseWriter, r *http.Request) {
	points, err := h.svc.List(r.Context())
	if err != nil {
		apperror.Write(w, h.logger, err)
		return
	}
	img, err := RenderChart(points)
	if err != nil {
		apperror.Write(w, h.logger, apperror.Wrap(err, "render political chart"))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}
