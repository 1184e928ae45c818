package create_appointment

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidDate возвращается, когда дата записи в прошлом
	ErrInvalidDate = errors.New("create_appointment: invalid appointment date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение maxAdvanceDays
	ErrDateTooFarInFuture = errors.New("create_appointment: date is too far in the future")

	// ErrTooLateToBook возвращается, когда время начала уже прошло
	ErrTooLateToBook = errors.New("create_appointment: start time has already passed")

	// ErrProviderClosed возвращается, когда мастер не работает в эту дату
	ErrProviderClosed = errors.New("create_appointment: provider is closed on this date")

	// ErrInvalidTimeSlot возвращается, когда интервал выходит за рабочие часы или попадает на перерыв
	ErrInvalidTimeSlot = errors.New("create_appointment: interval is outside working hours")

	// ErrSlotConflict возвращается, когда интервал уже занят другой записью
	// Клиенту нужно выбрать другое время; повтор допустим
	ErrSlotConflict = errors.New("create_appointment: slot is no longer available")

	// ErrClientBlocked возвращается, когда клиент заблокирован политикой отмен
	ErrClientBlocked = errors.New("create_appointment: client is blocked")

	// ErrBlockCheckFailed возвращается, когда статус блокировки не удалось определить
	ErrBlockCheckFailed = errors.New("create_appointment: block status is unavailable")

	// ErrScheduleUnavailable возвращается, когда расписание не удалось получить
	ErrScheduleUnavailable = errors.New("create_appointment: schedule is unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)

// BlockedError отказ в записи заблокированному клиенту
// errors.Is(err, ErrClientBlocked) == true
type BlockedError struct {
	UnblocksAt time.Time
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s until %s", ErrClientBlocked, e.UnblocksAt.Format(time.RFC3339))
}

func (e *BlockedError) Unwrap() error {
	return ErrClientBlocked
}
