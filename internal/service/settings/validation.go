package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// newValidator создает валидатор с тегом hhmm для времени суток
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := types.NewTimeStringFromString(fl.Field().String())
		return err == nil
	})
	return v
}

// validateStruct проверяет теги validate и переводит ошибки в ErrInvalidInput
func (s *Service) validateStruct(req interface{}) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

// validateOpenInterval требует оба времени и open < close для открытого дня
func validateOpenInterval(label string, open, close types.TimeString) error {
	if open.IsZero() || close.IsZero() {
		return fmt.Errorf("%w: %s: open and close times are required when open", ErrInvalidInput, label)
	}
	if err := (domain.Interval{Start: open, End: close}).Validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidInput, label, err)
	}
	return nil
}

// validateWorkingDay проверяет часы и перерывы рабочего дня
func validateWorkingDay(day *domain.WorkingDay) error {
	if !day.IsWorking {
		return nil
	}

	if err := validateOpenInterval("working day", day.StartTime, day.EndTime); err != nil {
		return err
	}

	hours := day.Interval()
	for _, b := range day.Breaks {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("%w: break %s: %v", ErrInvalidInput, b, err)
		}
		if !hours.Contains(b) {
			return fmt.Errorf("%w: break %s is outside working hours %s", ErrInvalidInput, b, hours)
		}
	}
	return nil
}
