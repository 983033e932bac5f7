package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/evaluation"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const evaluationColumns = `e.id, e.rater_id, e.ratee_id, e.department, e.rater_role, e.scores, e.total_score,
	e.status, e.created_at, e.updated_at, e.submitted_at, COALESCE(p.name, '')`

type evaluationRepositoryImpl struct {
	db *database.DB
}

func NewEvaluationRepository(db *database.DB) evaluation.EvaluationRepository {
	return &evaluationRepositoryImpl{db: db}
}

func scanEvaluation(row pgx.Row) (evaluation.Evaluation, error) {
	var e evaluation.Evaluation
	err := row.Scan(
		&e.ID,
		&e.RaterID,
		&e.RateeID,
		&e.Department,
		&e.RaterRole,
		&e.Scores,
		&e.TotalScore,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.SubmittedAt,
		&e.RateeName,
	)
	return e, err
}

// UpsertDraft implements evaluation.EvaluationRepository.
func (r *evaluationRepositoryImpl) UpsertDraft(ctx context.Context, ev evaluation.Evaluation) (evaluation.Evaluation, error) {
	q := GetQuerier(ctx, r.db)

	// The conflict branch only fires for drafts, so a submitted row yields no result.
	query := `
		WITH upserted AS (
			INSERT INTO evaluations (id, rater_id, ratee_id, department, rater_role, scores, total_score, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 'draft')
			ON CONFLICT ON CONSTRAINT evaluations_rater_ratee_key DO UPDATE
			SET scores = EXCLUDED.scores,
				total_score = EXCLUDED.total_score,
				department = EXCLUDED.department,
				rater_role = EXCLUDED.rater_role,
				updated_at = NOW()
			WHERE evaluations.status = 'draft'
			RETURNING *
		)
		SELECT ` + evaluationColumns + `
		FROM upserted e
		LEFT JOIN personnel p ON p.id = e.ratee_id
	`

	saved, err := scanEvaluation(q.QueryRow(ctx, query,
		ev.ID,
		ev.RaterID,
		ev.RateeID,
		ev.Department,
		ev.RaterRole,
		ev.Scores,
		ev.TotalScore,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return evaluation.Evaluation{}, evaluation.ErrAlreadySubmitted
		}
		return evaluation.Evaluation{}, fmt.Errorf("failed to save evaluation draft: %w", err)
	}
	return saved, nil
}

// GetByRaterAndRatee implements evaluation.EvaluationRepository.
func (r *evaluationRepositoryImpl) GetByRaterAndRatee(ctx context.Context, raterID, rateeID string) (evaluation.Evaluation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + evaluationColumns + `
		FROM evaluations e
		LEFT JOIN personnel p ON p.id = e.ratee_id
		WHERE e.rater_id = $1 AND e.ratee_id = $2
	`

	found, err := scanEvaluation(q.QueryRow(ctx, query, raterID, rateeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return evaluation.Evaluation{}, evaluation.ErrEvaluationNotFound
		}
		return evaluation.Evaluation{}, fmt.Errorf("failed to get evaluation: %w", err)
	}
	return found, nil
}

// ListByRater implements evaluation.EvaluationRepository.
func (r *evaluationRepositoryImpl) ListByRater(ctx context.Context, raterID string) ([]evaluation.Evaluation, error) {
	query := `
		SELECT ` + evaluationColumns + `
		FROM evaluations e
		LEFT JOIN personnel p ON p.id = e.ratee_id
		WHERE e.rater_id = $1
		ORDER BY p.name ASC
	`
	return r.list(ctx, query, raterID)
}

// DeleteDraft implements evaluation.EvaluationRepository.
func (r *evaluationRepositoryImpl) DeleteDraft(ctx context.Context, raterID, rateeID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		DELETE FROM evaluations
		WHERE rater_id = $1 AND ratee_id = $2 AND status = 'draft'
	`, raterID, rateeID)
	if err != nil {
		return fmt.Errorf("failed to delete evaluation draft: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing deleted: either there is no evaluation or it is locked.
	existing, err := r.GetByRaterAndRatee(ctx, raterID, rateeID)
	if err != nil {
		return err
	}
	if existing.IsSubmitted() {
		return evaluation.ErrAlreadySubmitted
	}
	return evaluation.ErrEvaluationNotFound
}

// LockByRater implements evaluation.EvaluationRepository. It only holds locks when ctx carries
// a transaction.
func (r *evaluationRepositoryImpl) LockByRater(ctx context.Context, raterID string) error {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id FROM evaluations
		WHERE rater_id = $1
		FOR UPDATE
	`, raterID)
	if err != nil {
		return fmt.Errorf("failed to lock evaluations: %w", err)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to lock evaluations: %w", err)
	}
	return nil
}

// MarkSubmitted implements evaluation.EvaluationRepository. Only drafts of the rater are touched.
func (r *evaluationRepositoryImpl) MarkSubmitted(ctx context.Context, raterID string, ids []string, at time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE evaluations
		SET status = 'submitted', submitted_at = $1, updated_at = $1
		WHERE rater_id = $2 AND id = ANY($3) AND status = 'draft'
	`, at.UTC(), raterID, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to submit evaluations: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListSubmittedByDepartment implements evaluation.EvaluationRepository.
func (r *evaluationRepositoryImpl) ListSubmittedByDepartment(ctx context.Context, department string) ([]evaluation.Evaluation, error) {
	query := `
		SELECT ` + evaluationColumns + `
		FROM evaluations e
		LEFT JOIN personnel p ON p.id = e.ratee_id
		WHERE e.department = $1 AND e.status = 'submitted'
		ORDER BY e.rater_id, p.name ASC
	`
	return r.list(ctx, query, department)
}

func (r *evaluationRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]evaluation.Evaluation, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	var list []evaluation.Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
