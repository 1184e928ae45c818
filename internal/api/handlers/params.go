package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// PathInt64 извлекает числовой параметр пути
func PathInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

// PathDate извлекает дату YYYY-MM-DD из параметра пути
func PathDate(r *http.Request, name string) (time.Time, error) {
	return time.Parse(domain.DateFormat, mux.Vars(r)[name])
}

// QueryDate разбирает необязательную дату YYYY-MM-DD из query; пустое значение дает nil
func QueryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	date, err := time.Parse(domain.DateFormat, raw)
	if err != nil {
		return nil, err
	}
	return &date, nil
}
