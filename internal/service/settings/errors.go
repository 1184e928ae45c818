package settings

import "errors"

var (
	// ErrAccessDenied возвращается, когда настройки меняет не сам мастер
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrSpecialHoursNotFound возвращается при удалении несуществующего особого дня
	ErrSpecialHoursNotFound = errors.New("special hours not found")

	// ErrWorkingDayNotFound возвращается, когда рабочий день не настроен
	ErrWorkingDayNotFound = errors.New("working day not found")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("settings: internal error")
)
