package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Contracta/internal/domain"
)

// ContractRepo: репозиторий снимков контрактов.
//
// Снимок хранится целиком в JSONB; отдельными колонками вынесены только
// поля для поиска и ссылочной целостности.
type ContractRepo struct {
	pool *pgxpool.Pool
}

// NewContractRepo создаёт новый ContractRepo.
func NewContractRepo(pool *pgxpool.Pool) *ContractRepo {
	return &ContractRepo{pool: pool}
}

// ContractFilter: параметры фильтрации контрактов.
type ContractFilter struct {
	ContractTypeID *uuid.UUID
	Limit          int
	Offset         int
}

// Create сохраняет снимок контракта.
func (r *ContractRepo) Create(ctx context.Context, c *domain.Contract) error {
	snapshot, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal contract: %w", err)
	}

	query := `
		INSERT INTO contracts (id, number, contract_type_id, snapshot, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.pool.Exec(ctx, query, c.ID, c.Number, c.ContractTypeID, snapshot, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert contract: %w", mapError(err))
	}
	return nil
}

// GetByID возвращает снимок контракта.
func (r *ContractRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	var snapshot []byte
	err := r.pool.QueryRow(ctx, `SELECT snapshot FROM contracts WHERE id = $1`, id).Scan(&snapshot)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contract by id: %w", err)
	}
	return unmarshalContract(snapshot)
}

// List возвращает контракты, новые первыми.
func (r *ContractRepo) List(ctx context.Context, filter ContractFilter) ([]domain.Contract, error) {
	query := `
		SELECT snapshot
		FROM contracts
		WHERE ($1::uuid IS NULL OR contract_type_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, nullUUID(filter.ContractTypeID), filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []domain.Contract
	for rows.Next() {
		var snapshot []byte
		if err := rows.Scan(&snapshot); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		c, err := unmarshalContract(snapshot)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *c)
	}
	return contracts, rows.Err()
}

// Update заменяет снимок контракта.
func (r *ContractRepo) Update(ctx context.Context, c *domain.Contract) error {
	snapshot, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal contract: %w", err)
	}

	query := `
		UPDATE contracts
		SET number = $2, contract_type_id = $3, snapshot = $4
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query, c.ID, c.Number, c.ContractTypeID, snapshot)
	if err != nil {
		return fmt.Errorf("update contract: %w", mapError(err))
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет контракт вместе с его заданиями рендера.
func (r *ContractRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func unmarshalContract(snapshot []byte) (*domain.Contract, error) {
	var c domain.Contract
	if err := json.Unmarshal(snapshot, &c); err != nil {
		return nil, fmt.Errorf("unmarshal contract: %w", err)
	}
	return &c, nil
}
