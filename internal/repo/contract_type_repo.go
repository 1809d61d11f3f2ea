package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Contracta/internal/domain"
)

// ContractTypeRepo: репозиторий для contract_types и template_versions.
type ContractTypeRepo struct {
	pool *pgxpool.Pool
}

// NewContractTypeRepo создаёт новый ContractTypeRepo.
func NewContractTypeRepo(pool *pgxpool.Pool) *ContractTypeRepo {
	return &ContractTypeRepo{pool: pool}
}

// --- ContractType CRUD ---

// Create создаёт тип контракта.
func (r *ContractTypeRepo) Create(ctx context.Context, ct *domain.ContractType) error {
	query := `
		INSERT INTO contract_types (id, name, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		ct.ID,
		ct.Name,
		ct.Description,
		ct.IsActive,
		ct.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contract type: %w", mapError(err))
	}
	return nil
}

// GetByID возвращает тип контракта по ID.
func (r *ContractTypeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContractType, error) {
	query := `
		SELECT id, name, description, is_active, created_at
		FROM contract_types
		WHERE id = $1
	`
	var ct domain.ContractType
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ct.ID,
		&ct.Name,
		&ct.Description,
		&ct.IsActive,
		&ct.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contract type by id: %w", err)
	}
	return &ct, nil
}

// GetByName возвращает тип контракта по имени.
func (r *ContractTypeRepo) GetByName(ctx context.Context, name string) (*domain.ContractType, error) {
	query := `
		SELECT id, name, description, is_active, created_at
		FROM contract_types
		WHERE name = $1
	`
	var ct domain.ContractType
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&ct.ID,
		&ct.Name,
		&ct.Description,
		&ct.IsActive,
		&ct.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contract type by name: %w", err)
	}
	return &ct, nil
}

// List возвращает все типы контрактов, новые первыми.
func (r *ContractTypeRepo) List(ctx context.Context) ([]domain.ContractType, error) {
	query := `
		SELECT id, name, description, is_active, created_at
		FROM contract_types
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list contract types: %w", err)
	}
	defer rows.Close()

	var types []domain.ContractType
	for rows.Next() {
		var ct domain.ContractType
		if err := rows.Scan(
			&ct.ID,
			&ct.Name,
			&ct.Description,
			&ct.IsActive,
			&ct.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan contract type: %w", err)
		}
		types = append(types, ct)
	}
	return types, rows.Err()
}

// Update обновляет тип контракта.
func (r *ContractTypeRepo) Update(ctx context.Context, ct *domain.ContractType) error {
	query := `
		UPDATE contract_types
		SET name = $2, description = $3, is_active = $4
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, ct.ID, ct.Name, ct.Description, ct.IsActive)
	if err != nil {
		return fmt.Errorf("update contract type: %w", mapError(err))
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет тип контракта вместе с версиями шаблона.
// Если на тип ссылаются контракты, возвращает ErrInvalidState.
func (r *ContractTypeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM contract_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contract type: %w", mapError(err))
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- TemplateVersion ---

// CreateVersion сохраняет новую версию шаблона.
// Номер версии вычисляется и вставляется одним запросом.
func (r *ContractTypeRepo) CreateVersion(ctx context.Context, contractTypeID uuid.UUID, html string) (*domain.TemplateVersion, error) {
	var tv domain.TemplateVersion
	err := r.pool.QueryRow(ctx, `
		INSERT INTO template_versions (contract_type_id, version, html, created_at)
		SELECT $1, COALESCE(MAX(version), 0) + 1, $2, NOW()
		FROM template_versions
		WHERE contract_type_id = $1
		RETURNING contract_type_id, version, html, created_at
	`, contractTypeID, html).Scan(
		&tv.ContractTypeID,
		&tv.Version,
		&tv.HTML,
		&tv.CreatedAt,
	)
	if err != nil {
		err = mapError(err)
		if errors.Is(err, ErrInvalidState) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("insert template version: %w", err)
	}
	return &tv, nil
}

// GetVersion возвращает конкретную версию шаблона.
func (r *ContractTypeRepo) GetVersion(ctx context.Context, contractTypeID uuid.UUID, version int) (*domain.TemplateVersion, error) {
	query := `
		SELECT contract_type_id, version, html, created_at
		FROM template_versions
		WHERE contract_type_id = $1 AND version = $2
	`
	return scanTemplateVersion(r.pool.QueryRow(ctx, query, contractTypeID, version))
}

// GetLatestVersion возвращает последнюю версию шаблона.
func (r *ContractTypeRepo) GetLatestVersion(ctx context.Context, contractTypeID uuid.UUID) (*domain.TemplateVersion, error) {
	query := `
		SELECT contract_type_id, version, html, created_at
		FROM template_versions
		WHERE contract_type_id = $1
		ORDER BY version DESC
		LIMIT 1
	`
	return scanTemplateVersion(r.pool.QueryRow(ctx, query, contractTypeID))
}

// ListVersions возвращает версии шаблона без HTML, новые первыми.
func (r *ContractTypeRepo) ListVersions(ctx context.Context, contractTypeID uuid.UUID) ([]domain.TemplateVersion, error) {
	query := `
		SELECT contract_type_id, version, created_at
		FROM template_versions
		WHERE contract_type_id = $1
		ORDER BY version DESC
	`
	rows, err := r.pool.Query(ctx, query, contractTypeID)
	if err != nil {
		return nil, fmt.Errorf("list template versions: %w", err)
	}
	defer rows.Close()

	var versions []domain.TemplateVersion
	for rows.Next() {
		var tv domain.TemplateVersion
		if err := rows.Scan(&tv.ContractTypeID, &tv.Version, &tv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan template version: %w", err)
		}
		versions = append(versions, tv)
	}
	return versions, rows.Err()
}

func scanTemplateVersion(row pgx.Row) (*domain.TemplateVersion, error) {
	var tv domain.TemplateVersion
	err := row.Scan(&tv.ContractTypeID, &tv.Version, &tv.HTML, &tv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template version: %w", err)
	}
	return &tv, nil
}
