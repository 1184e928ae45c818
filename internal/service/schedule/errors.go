package schedule

import "errors"

var (
	// ErrResolutionFailed возвращается, когда источник расписания недоступен
	// Вызывающий код не должен подставлять расписание по умолчанию
	ErrResolutionFailed = errors.New("schedule: resolution failed")

	// ErrMalformedHours возвращается, когда сохраненное расписание некорректно
	ErrMalformedHours = errors.New("schedule: malformed stored hours")
)
