package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/personnel"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const personnelColumns = `id, name, department, position, active, created_at, updated_at`

type personnelRepositoryImpl struct {
	db *database.DB
}

func NewPersonnelRepository(db *database.DB) personnel.PersonnelRepository {
	return &personnelRepositoryImpl{db: db}
}

func scanPersonnel(row pgx.Row) (personnel.Personnel, error) {
	var p personnel.Personnel
	err := row.Scan(&p.ID, &p.Name, &p.Department, &p.Position, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create implements personnel.PersonnelRepository.
func (r *personnelRepositoryImpl) Create(ctx context.Context, p personnel.Personnel) (personnel.Personnel, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO personnel (id, name, department, position, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + personnelColumns

	created, err := scanPersonnel(q.QueryRow(ctx, query, p.ID, p.Name, p.Department, p.Position, p.Active))
	if err != nil {
		if isUniqueViolation(err, "personnel_department_name_key") {
			return personnel.Personnel{}, personnel.ErrPersonnelNameExists
		}
		return personnel.Personnel{}, fmt.Errorf("failed to create personnel: %w", err)
	}
	return created, nil
}

// GetByID implements personnel.PersonnelRepository.
func (r *personnelRepositoryImpl) GetByID(ctx context.Context, id string) (personnel.Personnel, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + personnelColumns + ` FROM personnel WHERE id = $1`

	found, err := scanPersonnel(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return personnel.Personnel{}, personnel.ErrPersonnelNotFound
		}
		return personnel.Personnel{}, fmt.Errorf("failed to get personnel %s: %w", id, err)
	}
	return found, nil
}

// List implements personnel.PersonnelRepository.
func (r *personnelRepositoryImpl) List(ctx context.Context, filter personnel.ListFilter) ([]personnel.Personnel, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", argIdx))
		args = append(args, filter.Department)
		argIdx++
	}
	if !filter.IncludeInactive {
		conditions = append(conditions, "active")
	}

	query := `SELECT ` + personnelColumns + ` FROM personnel`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY department ASC, name ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list personnel: %w", err)
	}
	defer rows.Close()

	var list []personnel.Personnel
	for rows.Next() {
		p, err := scanPersonnel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan personnel: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update implements personnel.PersonnelRepository.
func (r *personnelRepositoryImpl) Update(ctx context.Context, p personnel.Personnel) (personnel.Personnel, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE personnel
		SET name = $1, department = $2, position = $3, active = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + personnelColumns

	updated, err := scanPersonnel(q.QueryRow(ctx, query, p.Name, p.Department, p.Position, p.Active, p.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return personnel.Personnel{}, personnel.ErrPersonnelNotFound
		}
		if isUniqueViolation(err, "personnel_department_name_key") {
			return personnel.Personnel{}, personnel.ErrPersonnelNameExists
		}
		return personnel.Personnel{}, fmt.Errorf("failed to update personnel %s: %w", p.ID, err)
	}
	return updated, nil
}

// Delete implements personnel.PersonnelRepository.
func (r *personnelRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM personnel WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete personnel %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return personnel.ErrPersonnelNotFound
	}
	return nil
}

// CountActiveByDepartment implements personnel.PersonnelRepository.
func (r *personnelRepositoryImpl) CountActiveByDepartment(ctx context.Context, department string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM personnel WHERE department = $1 AND active`, department).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count personnel: %w", err)
	}
	return count, nil
}
