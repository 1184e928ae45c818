package workingday

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AvailabilityService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

const tableName = "working_days"

// breakRecord формат перерыва в колонке breaks (jsonb)
type breakRecord struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Repository репозиторий индивидуальных рабочих дней
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория рабочих дней
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get получает рабочий день мастера на дату
func (r *Repository) Get(ctx context.Context, providerID int64, date time.Time) (*domain.WorkingDay, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"date",
		"is_working",
		"start_time",
		"end_time",
		"slot_interval_minutes",
		"breaks",
		"created_at",
		"updated_at",
	).
		From(tableName).
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Eq{"date": date.Format(domain.DateFormat)}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var (
		day                  domain.WorkingDay
		breaksRaw            []byte
		createdAt, updatedAt sql.NullTime
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&day.ID,
		&day.ProviderID,
		&day.Date,
		&day.IsWorking,
		&day.StartTime,
		&day.EndTime,
		&day.SlotIntervalMinutes,
		&breaksRaw,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkingDayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan row: %v", ErrScanRow, err)
	}

	day.Breaks, err = decodeBreaks(breaksRaw)
	if err != nil {
		return nil, err
	}
	day.CreatedAt = createdAt.Time
	day.UpdatedAt = updatedAt.Time

	return &day, nil
}

// Upsert создает или заменяет рабочий день на дату
func (r *Repository) Upsert(ctx context.Context, day *domain.WorkingDay) (*domain.WorkingDay, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	breaks, err := encodeBreaks(day.Breaks)
	if err != nil {
		return nil, err
	}

	query, args, err := psqlbuilder.Insert(tableName).
		Columns("provider_id", "date", "is_working", "start_time", "end_time", "slot_interval_minutes", "breaks").
		Values(
			day.ProviderID,
			day.Date.Format(domain.DateFormat),
			day.IsWorking,
			day.StartTime,
			day.EndTime,
			day.SlotIntervalMinutes,
			squirrel.Expr("?::jsonb", string(breaks)),
		).
		Suffix(`ON CONFLICT (provider_id, date) DO UPDATE SET
			is_working = EXCLUDED.is_working,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			slot_interval_minutes = EXCLUDED.slot_interval_minutes,
			breaks = EXCLUDED.breaks,
			updated_at = NOW()
			RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&day.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	day.CreatedAt = createdAt.Time
	day.UpdatedAt = updatedAt.Time

	return day, nil
}

// Delete удаляет индивидуальное расписание на дату (день снова строится по недельному шаблону)
func (r *Repository) Delete(ctx context.Context, providerID int64, date time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Eq{"date": date.Format(domain.DateFormat)}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrWorkingDayNotFound
	}

	return nil
}

func encodeBreaks(breaks []domain.Interval) ([]byte, error) {
	records := make([]breakRecord, len(breaks))
	for i, b := range breaks {
		records[i] = breakRecord{Start: b.Start.String(), End: b.End.String()}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBreaksEncoding, err)
	}
	return data, nil
}

func decodeBreaks(raw []byte) ([]domain.Interval, error) {
	if len(raw) == 0 {
		return []domain.Interval{}, nil
	}

	var records []breakRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBreaksEncoding, err)
	}

	breaks := make([]domain.Interval, 0, len(records))
	for _, rec := range records {
		start, err := types.NewTimeStringFromString(rec.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: break start: %v", ErrBreaksEncoding, err)
		}
		end, err := types.NewTimeStringFromString(rec.End)
		if err != nil {
			return nil, fmt.Errorf("%w: break end: %v", ErrBreaksEncoding, err)
		}
		breaks = append(breaks, domain.Interval{Start: start, End: end})
	}

	return breaks, nil
}
