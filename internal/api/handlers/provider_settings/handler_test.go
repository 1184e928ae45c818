package provider_settings

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/settings"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/settings/models"
)

type mockService struct {
	mock.Mock
	SettingsService
}

func (m *mockService) UpdatePolicy(ctx context.Context, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PolicyResponse), args.Error(1)
}

func (m *mockService) DeleteSpecialHours(ctx context.Context, userID, providerID int64, date time.Time) error {
	return m.Called(ctx, userID, providerID, date).Error(0)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func router(svc *mockService) *mux.Router {
	h := NewHandler(svc, nopLogger{})
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/providers/{providerId}/cancellation-policy", h.UpdatePolicy).Methods(http.MethodPut)
	r.HandleFunc("/providers/{providerId}/special-hours/{date}", h.DeleteSpecialHours).Methods(http.MethodDelete)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-User-ID", "3")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUpdatePolicy(t *testing.T) {
	const body = `{"isEnabled":true,"periodDays":30,"maxCancellations":3,"noShowMultiplier":2,"blockDurationDays":7}`

	t.Run("saved", func(t *testing.T) {
		svc := new(mockService)
		svc.On("UpdatePolicy", mock.Anything, mock.MatchedBy(func(req *models.UpdatePolicyRequest) bool {
			return req.UserID == 3 && req.ProviderID == 3 && req.MaxCancellations == 3
		})).Return(&models.PolicyResponse{ProviderID: 3, IsEnabled: true}, nil)

		rec := do(router(svc), http.MethodPut, "/providers/3/cancellation-policy", body)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	errs := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: fmt.Errorf("%w: periodDays", settings.ErrInvalidInput), want: http.StatusBadRequest},
		{name: "other provider", err: settings.ErrAccessDenied, want: http.StatusForbidden},
		{name: "internal", err: settings.ErrInternal, want: http.StatusInternalServerError},
	}
	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			svc.On("UpdatePolicy", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := do(router(svc), http.MethodPut, "/providers/3/cancellation-policy", body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	t.Run("unknown field", func(t *testing.T) {
		rec := do(router(new(mockService)), http.MethodPut, "/providers/3/cancellation-policy", `{"limit":1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteSpecialHours(t *testing.T) {
	date := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)

	svc := new(mockService)
	svc.On("DeleteSpecialHours", mock.Anything, int64(3), int64(3), date).Return(settings.ErrSpecialHoursNotFound)

	rec := do(router(svc), http.MethodDelete, "/providers/3/special-hours/2025-03-08", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router(svc), http.MethodDelete, "/providers/3/special-hours/08-03-2025", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
