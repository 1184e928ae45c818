package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AvailabilityService/pkg/psqlbuilder"
)

const tableName = "cancellation_policies"

// Repository репозиторий политик отмен
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория политик
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByProvider получает политику отмен мастера
func (r *Repository) GetByProvider(ctx context.Context, providerID int64) (*domain.CancellationPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"provider_id",
		"is_enabled",
		"period_days",
		"max_cancellations",
		"no_show_multiplier",
		"block_duration_days",
		"created_at",
		"updated_at",
	).
		From(tableName).
		Where(squirrel.Eq{"provider_id": providerID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByProvider - build select query: %v", ErrBuildQuery, err)
	}

	var (
		p                    domain.CancellationPolicy
		createdAt, updatedAt sql.NullTime
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ProviderID,
		&p.IsEnabled,
		&p.PeriodDays,
		&p.MaxCancellations,
		&p.NoShowMultiplier,
		&p.BlockDurationDays,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProvider - scan policy: %v", ErrScanRow, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}

// Upsert создает или заменяет политику отмен мастера
func (r *Repository) Upsert(ctx context.Context, p *domain.CancellationPolicy) (*domain.CancellationPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"provider_id",
			"is_enabled",
			"period_days",
			"max_cancellations",
			"no_show_multiplier",
			"block_duration_days",
		).
		Values(
			p.ProviderID,
			p.IsEnabled,
			p.PeriodDays,
			p.MaxCancellations,
			p.NoShowMultiplier,
			p.BlockDurationDays,
		).
		Suffix(`ON CONFLICT (provider_id) DO UPDATE SET
			is_enabled = EXCLUDED.is_enabled,
			period_days = EXCLUDED.period_days,
			max_cancellations = EXCLUDED.max_cancellations,
			no_show_multiplier = EXCLUDED.no_show_multiplier,
			block_duration_days = EXCLUDED.block_duration_days,
			updated_at = NOW()
			RETURNING created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}
