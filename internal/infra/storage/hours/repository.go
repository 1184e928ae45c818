package hours

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AvailabilityService/pkg/psqlbuilder"
)

const (
	businessHoursTable = "business_hours"
	specialHoursTable  = "special_hours"
)

// Repository репозиторий недельного расписания и особых дней
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBusinessHours получает недельное расписание мастера (до 7 строк, по возрастанию дня недели)
// Пустой результат означает, что мастер ничего не настраивал
func (r *Repository) GetBusinessHours(ctx context.Context, providerID int64) ([]*domain.BusinessHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"provider_id",
		"weekday",
		"is_open",
		"open_time",
		"close_time",
		"created_at",
		"updated_at",
	).
		From(businessHoursTable).
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHours - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.BusinessHours, 0, 7)
	for rows.Next() {
		var (
			h                    domain.BusinessHours
			weekday              int
			createdAt, updatedAt sql.NullTime
		)

		if err := rows.Scan(
			&h.ID,
			&h.ProviderID,
			&weekday,
			&h.IsOpen,
			&h.OpenTime,
			&h.CloseTime,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: GetBusinessHours - scan row: %v", ErrScanRow, err)
		}

		h.Weekday, err = domain.ParseWeekday(weekday)
		if err != nil {
			return nil, fmt.Errorf("%w: GetBusinessHours - stored weekday: %v", ErrScanRow, err)
		}
		h.CreatedAt = createdAt.Time
		h.UpdatedAt = updatedAt.Time

		result = append(result, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHours - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// UpsertBusinessHours сохраняет строки недельного расписания (одна строка на день недели)
func (r *Repository) UpsertBusinessHours(ctx context.Context, providerID int64, days []*domain.BusinessHours) error {
	if len(days) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert(businessHoursTable).
		Columns("provider_id", "weekday", "is_open", "open_time", "close_time")

	for _, d := range days {
		insertBuilder = insertBuilder.Values(providerID, int(d.Weekday), d.IsOpen, d.OpenTime, d.CloseTime)
	}

	query, args, err := insertBuilder.
		Suffix(`ON CONFLICT (provider_id, weekday) DO UPDATE SET
			is_open = EXCLUDED.is_open,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			updated_at = NOW()`).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpsertBusinessHours - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertBusinessHours - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetSpecialHours получает особое расписание на конкретную дату
func (r *Repository) GetSpecialHours(ctx context.Context, providerID int64, date time.Time) (*domain.SpecialHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(specialHoursColumns...).
		From(specialHoursTable).
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Eq{"date": date.Format(domain.DateFormat)}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetSpecialHours - build select query: %v", ErrBuildQuery, err)
	}

	special, err := scanSpecialHours(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSpecialHoursNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetSpecialHours - scan row: %v", ErrScanRow, err)
	}

	return special, nil
}

// ListSpecialHours получает особые дни мастера в диапазоне дат (включительно)
func (r *Repository) ListSpecialHours(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.SpecialHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(specialHoursColumns...).
		From(specialHoursTable).
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.GtOrEq{"date": from.Format(domain.DateFormat)}).
		Where(squirrel.LtOrEq{"date": to.Format(domain.DateFormat)}).
		OrderBy("date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListSpecialHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListSpecialHours - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.SpecialHours, 0)
	for rows.Next() {
		special, err := scanSpecialHours(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListSpecialHours - scan row: %v", ErrScanRow, err)
		}
		result = append(result, special)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListSpecialHours - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// UpsertSpecialHours создает или заменяет особое расписание на дату
func (r *Repository) UpsertSpecialHours(ctx context.Context, special *domain.SpecialHours) (*domain.SpecialHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(specialHoursTable).
		Columns("provider_id", "date", "name", "is_open", "open_time", "close_time").
		Values(
			special.ProviderID,
			special.Date.Format(domain.DateFormat),
			special.Name,
			special.IsOpen,
			special.OpenTime,
			special.CloseTime,
		).
		Suffix(`ON CONFLICT (provider_id, date) DO UPDATE SET
			name = EXCLUDED.name,
			is_open = EXCLUDED.is_open,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			updated_at = NOW()
			RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertSpecialHours - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&special.ID, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: UpsertSpecialHours - execute insert: %v", ErrExecQuery, err)
	}

	special.CreatedAt = createdAt.Time
	special.UpdatedAt = updatedAt.Time

	return special, nil
}

// DeleteSpecialHours удаляет особое расписание на дату
func (r *Repository) DeleteSpecialHours(ctx context.Context, providerID int64, date time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(specialHoursTable).
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Eq{"date": date.Format(domain.DateFormat)}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteSpecialHours - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteSpecialHours - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteSpecialHours - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSpecialHoursNotFound
	}

	return nil
}

var specialHoursColumns = []string{
	"id",
	"provider_id",
	"date",
	"name",
	"is_open",
	"open_time",
	"close_time",
	"created_at",
	"updated_at",
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSpecialHours(row rowScanner) (*domain.SpecialHours, error) {
	var (
		s                    domain.SpecialHours
		createdAt, updatedAt sql.NullTime
	)

	if err := row.Scan(
		&s.ID,
		&s.ProviderID,
		&s.Date,
		&s.Name,
		&s.IsOpen,
		&s.OpenTime,
		&s.CloseTime,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}
