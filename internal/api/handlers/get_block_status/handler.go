package get_block_status

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/blocking"
)

const (
	msgInvalidProviderID = "некорректный ID мастера"
	msgInvalidClientID   = "некорректный ID клиента"
	msgMissingPhone      = "телефон клиента обязателен"
)

// BlockStatusResponse HTTP response model
type BlockStatusResponse struct {
	Blocked    bool        `json:"blocked"`
	State      string      `json:"state"`
	UnblocksAt *string     `json:"unblocksAt,omitempty"`
	Stats      *BlockStats `json:"stats,omitempty"`
}

// BlockStats счетчик отмен, показываемый клиенту
type BlockStats struct {
	EffectiveCount float64 `json:"effectiveCount"`
	Max            int     `json:"max"`
}

type Handler struct {
	service      BlockingService
	timeProvider TimeProvider
	logger       Logger
}

func NewHandler(service BlockingService, timeProvider TimeProvider, logger Logger) *Handler {
	return &Handler{
		service:      service,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/clients/{clientId}/block-status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	clientID, err := handlers.PathInt64(r, "clientId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidClientID)
		return
	}

	h.respond(w, r, providerID, domain.ClientRef{ID: &clientID})
}

// HandleByPhone GET /api/v1/providers/{providerId}/clients/block-status?phone=...
// Для клиентов без аккаунта
func (h *Handler) HandleByPhone(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	phone := r.URL.Query().Get("phone")
	if phone == "" {
		handlers.RespondBadRequest(w, msgMissingPhone)
		return
	}

	h.respond(w, r, providerID, domain.ClientRef{Phone: &phone})
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, providerID int64, client domain.ClientRef) {
	status, err := h.service.IsClientBlocked(r.Context(), client, providerID, h.timeProvider.Now())
	if err != nil {
		switch {
		case errors.Is(err, blocking.ErrInvalidClient):
			handlers.RespondBadRequest(w, msgMissingPhone)

		case errors.Is(err, blocking.ErrDataSource):
			h.logger.Warn("GET block-status - Data source failure: provider_id=%d, %s, error=%v", providerID, client, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("GET block-status - Failed: provider_id=%d, %s, error=%v", providerID, client, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromDomainStatus(status))
}

// FromDomainStatus конвертирует статус блокировки в HTTP response
func FromDomainStatus(status *domain.ClientBlockStatus) *BlockStatusResponse {
	resp := &BlockStatusResponse{
		Blocked: status.Blocked,
		State:   string(status.State),
	}
	if status.UnblocksAt != nil {
		unblocksAt := status.UnblocksAt.Format(time.RFC3339)
		resp.UnblocksAt = &unblocksAt
	}
	if status.Stats != nil {
		resp.Stats = &BlockStats{EffectiveCount: status.Stats.EffectiveCount, Max: status.Stats.Max}
	}
	return resp
}
