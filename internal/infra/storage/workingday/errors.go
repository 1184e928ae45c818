package workingday

import "errors"

var (
	// ErrWorkingDayNotFound возвращается, когда на дату нет индивидуального расписания
	ErrWorkingDayNotFound = errors.New("workingday.repository: working day not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("workingday.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("workingday.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("workingday.repository: failed to scan row")

	// ErrBreaksEncoding возвращается при ошибке (де)сериализации перерывов
	ErrBreaksEncoding = errors.New("workingday.repository: failed to encode breaks")
)
