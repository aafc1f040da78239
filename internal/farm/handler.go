package farm

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/butecodosdevs/buteco-core/internal/apperror"
	"github.com/butecodosdevs/buteco-core/internal/farm/entity"
	"github.com/butecodosdevs/buteco-core/pkg/utilities"
)

type Handler struct {
	svc    *Service
	schema string
	logger *zap.SugaredLogger
}

// NewHandler builds the farm handler; schema is reported by /health.
func NewHandler(svc *Service, schema string, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, schema: schema, logger: logger}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type CreateFarmInput struct {
	Name string `json:"name"`
}

type AddItemInput struct {
	Type   entity.ItemType `json:"type"`
	Amount int             `json:"amount"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	service := h.schema
	if service == "" {
		service = "unknown"
	}
	apperror.WriteJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Service: service})
}

// Balance handles GET /balance/{clientId}.
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Balance(r.Context(), utilities.PathParam(r, "clientId"))
	if err != nil {
		apperror.Write(w, h.logger, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) ListFarms(w http.ResponseWriter, r *http.Request) {
	farms, err := h.svc.ListFarms(r.Context())
	if err != nil {
		apperror.Write(w, h.logger, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, farms)
}

func (h *Handler) CreateFarm(w http.ResponseWriter, r *http.Request) {
	var in CreateFarmInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperror.Write(w, h.logger, apperror.NewValidation(msgNameRequired))
		return
	}
	f, err := h.svc.CreateFarm(r.Context(), in.Name)
	if err != nil {
		apperror.Write(w, h.logger, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, f)
}

func (h *Handler) GetFarm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.farmID(w, r)
	if !ok {
		return
	}
	f, err := h.svc.GetFarm(r.Context(), id)
	if err != nil {
		apperror.Write(w, h.logger, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, f)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.farmID(w, r)
	if !ok {
		return
	}
	var in AddItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apperror.Write(w, h.logger, apperror.NewValidation(msgInvalidItemType))
		return
	}
	it, err := h.svc.AddItem(r.Context(), id, entity.Item{Type: in.Type, Amount: in.Amount})
	if err != nil {
		apperror.Write(w, h.logger, err)
		return
	}
	apperror.WriteJSON(w, http.StatusCreated, it)
}

func (h *Handler) farmID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(utilities.PathParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		apperror.Write(w, h.logger, apperror.NewNotFound(msgFarmNotFound))
		return 0, false
	}
	return id, true
}
