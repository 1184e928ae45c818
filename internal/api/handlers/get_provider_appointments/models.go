package get_provider_appointments

import (
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/appointments/models"
)

// ToServiceRequest разбирает query параметры from, to, status, includeInactive
func ToServiceRequest(r *http.Request, providerID, userID int64) (*models.GetProviderAppointmentsRequest, error) {
	req := &models.GetProviderAppointmentsRequest{
		UserID:     userID,
		ProviderID: providerID,
	}

	var err error
	if req.StartDate, err = handlers.QueryDate(r, "from"); err != nil {
		return nil, err
	}
	if req.EndDate, err = handlers.QueryDate(r, "to"); err != nil {
		return nil, err
	}

	query := r.URL.Query()
	if status := query.Get("status"); status != "" {
		req.Status = &status
	}
	if raw := query.Get("includeInactive"); raw != "" {
		if req.IncludeInactive, err = strconv.ParseBool(raw); err != nil {
			return nil, err
		}
	}

	return req, nil
}
