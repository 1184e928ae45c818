package blocking

import "errors"

var (
	// ErrDataSource возвращается, когда не удалось получить политику или историю клиента
	// Решение о блокировке в этом случае не принимается
	ErrDataSource = errors.New("blocking: data source failure")

	// ErrInvalidClient возвращается, когда клиент не идентифицирован
	ErrInvalidClient = errors.New("blocking: client id or phone is required")
)
