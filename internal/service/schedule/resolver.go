package schedule

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/ptr"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// ResolveEffectiveHours определяет часы работы на дату по правилу приоритета:
// особый день на эту дату > строка недельного расписания для дня недели >
// шаблон по умолчанию (только если мастер не настроил ни одного дня)
//
// Функция чистая: результат зависит только от аргументов
func ResolveEffectiveHours(date time.Time, special *domain.SpecialHours, weekly []*domain.BusinessHours) (*domain.EffectiveHours, error) {
	if special != nil {
		hours, err := build(date, special.IsOpen, special.OpenTime, special.CloseTime, domain.HoursSourceSpecial)
		if err != nil {
			return nil, err
		}
		hours.IsSpecialDay = true
		hours.SpecialDayName = ptr.Ptr(special.Name)
		return hours, nil
	}

	weekday := date.Weekday()

	if len(weekly) > 0 {
		for _, day := range weekly {
			if day.Weekday == weekday {
				return build(date, day.IsOpen, day.OpenTime, day.CloseTime, domain.HoursSourceWeekly)
			}
		}
		// Мастер настроил расписание, но не этот день: выходной
		return build(date, false, "", "", domain.HoursSourceWeekly)
	}

	tpl := domain.DefaultWeeklyTemplate[weekday]
	return build(date, tpl.IsOpen, tpl.OpenTime, tpl.CloseTime, domain.HoursSourceDefault)
}

// ApplyWorkingDay накладывает индивидуальный рабочий день на часы работы
// Особый день важнее рабочего дня; без рабочего дня используется defaultInterval и нет перерывов
func ApplyWorkingDay(hours *domain.EffectiveHours, workingDay *domain.WorkingDay, defaultInterval int) (*domain.DaySchedule, error) {
	day := &domain.DaySchedule{
		Hours:               *hours,
		SlotIntervalMinutes: defaultInterval,
		Breaks:              []domain.Interval{},
	}

	if workingDay == nil || hours.IsSpecialDay {
		return day, nil
	}

	if workingDay.SlotIntervalMinutes > 0 {
		day.SlotIntervalMinutes = workingDay.SlotIntervalMinutes
	}
	day.FromWorkingDay = true

	if !workingDay.IsWorking {
		day.Hours.IsOpen = false
		day.Hours.OpenTime = ""
		day.Hours.CloseTime = ""
		return day, nil
	}

	start, err := normalize(workingDay.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := normalize(workingDay.EndTime)
	if err != nil {
		return nil, err
	}
	if !start.IsBefore(end) {
		return nil, fmt.Errorf("%w: working day %s-%s", ErrMalformedHours, start, end)
	}

	day.Hours.IsOpen = true
	day.Hours.OpenTime = start
	day.Hours.CloseTime = end

	for _, b := range workingDay.Breaks {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("%w: break: %v", ErrMalformedHours, err)
		}
		day.Breaks = append(day.Breaks, b)
	}

	return day, nil
}

func build(date time.Time, isOpen bool, open, close types.TimeString, source domain.HoursSource) (*domain.EffectiveHours, error) {
	hours := &domain.EffectiveHours{
		Date:   date,
		IsOpen: isOpen,
		Source: source,
	}
	if !isOpen {
		return hours, nil
	}

	openTime, err := normalize(open)
	if err != nil {
		return nil, err
	}
	closeTime, err := normalize(close)
	if err != nil {
		return nil, err
	}
	if !openTime.IsBefore(closeTime) {
		return nil, fmt.Errorf("%w: %s hours %s-%s", ErrMalformedHours, source, openTime, closeTime)
	}

	hours.OpenTime = openTime
	hours.CloseTime = closeTime
	return hours, nil
}

// normalize приводит время к HH:MM (секунды отбрасываются)
func normalize(t types.TimeString) (types.TimeString, error) {
	normalized, err := types.NewTimeStringFromString(t.String())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedHours, err)
	}
	return normalized, nil
}
