package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/poll"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const pollColumns = `id, title, description, created_by, status, closes_at, created_at, closed_at`

type pollRepositoryImpl struct {
	db *database.DB
}

func NewPollRepository(db *database.DB) poll.PollRepository {
	return &pollRepositoryImpl{db: db}
}

func scanPoll(row pgx.Row) (poll.Poll, error) {
	var p poll.Poll
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.CreatedBy, &p.Status, &p.ClosesAt, &p.CreatedAt, &p.ClosedAt)
	return p, err
}

// Create implements poll.PollRepository. Callers run it inside a transaction so
// the poll and its options are stored together.
func (r *pollRepositoryImpl) Create(ctx context.Context, p poll.Poll) (poll.Poll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO polls (id, title, description, created_by, status, closes_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + pollColumns

	created, err := scanPoll(q.QueryRow(ctx, query, p.ID, p.Title, p.Description, p.CreatedBy, p.Status, p.ClosesAt))
	if err != nil {
		return poll.Poll{}, fmt.Errorf("failed to create poll: %w", err)
	}

	for i, o := range p.Options {
		_, err := q.Exec(ctx, `
			INSERT INTO poll_options (id, poll_id, label, position)
			VALUES ($1, $2, $3, $4)
		`, o.ID, created.ID, o.Label, i)
		if err != nil {
			return poll.Poll{}, fmt.Errorf("failed to create poll option: %w", err)
		}
		created.Options = append(created.Options, poll.Option{ID: o.ID, PollID: created.ID, Label: o.Label, Position: i})
	}

	return created, nil
}

// GetByID implements poll.PollRepository.
func (r *pollRepositoryImpl) GetByID(ctx context.Context, id string) (poll.Poll, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanPoll(q.QueryRow(ctx, `SELECT `+pollColumns+` FROM polls WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return poll.Poll{}, poll.ErrPollNotFound
		}
		return poll.Poll{}, fmt.Errorf("failed to get poll %s: %w", id, err)
	}

	options, err := r.optionsOf(ctx, []string{found.ID})
	if err != nil {
		return poll.Poll{}, err
	}
	found.Options = options[found.ID]
	return found, nil
}

// List implements poll.PollRepository.
func (r *pollRepositoryImpl) List(ctx context.Context, filter poll.ListFilter) ([]poll.Poll, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + pollColumns + ` FROM polls`
	var args []interface{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	var polls []poll.Poll
	var ids []string
	for rows.Next() {
		p, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(polls) == 0 {
		return polls, nil
	}

	options, err := r.optionsOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range polls {
		polls[i].Options = options[polls[i].ID]
	}
	return polls, nil
}

func (r *pollRepositoryImpl) optionsOf(ctx context.Context, pollIDs []string) (map[string][]poll.Option, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, poll_id, label, position
		FROM poll_options
		WHERE poll_id = ANY($1)
		ORDER BY poll_id, position ASC
	`, pollIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load poll options: %w", err)
	}
	defer rows.Close()

	options := make(map[string][]poll.Option, len(pollIDs))
	for rows.Next() {
		var o poll.Option
		if err := rows.Scan(&o.ID, &o.PollID, &o.Label, &o.Position); err != nil {
			return nil, fmt.Errorf("failed to scan poll option: %w", err)
		}
		options[o.PollID] = append(options[o.PollID], o)
	}
	return options, rows.Err()
}

// Close implements poll.PollRepository.
func (r *pollRepositoryImpl) Close(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE polls SET status = 'closed', closed_at = $1
		WHERE id = $2 AND status = 'open'
	`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to close poll %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return poll.ErrPollClosed
	}
	return nil
}

// CloseExpired implements poll.PollRepository.
func (r *pollRepositoryImpl) CloseExpired(ctx context.Context, now time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		UPDATE polls SET status = 'closed', closed_at = $1
		WHERE status = 'open' AND closes_at IS NOT NULL AND closes_at <= $1
		RETURNING id
	`, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to close expired polls: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CreateVote implements poll.PollRepository.
func (r *pollRepositoryImpl) CreateVote(ctx context.Context, v poll.Vote) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO poll_votes (poll_id, option_id, voter_hash)
		VALUES ($1, $2, $3)
	`, v.PollID, v.OptionID, v.VoterHash)
	if err != nil {
		if isUniqueViolation(err, "poll_votes_pkey") {
			return poll.ErrAlreadyVoted
		}
		return fmt.Errorf("failed to record vote: %w", err)
	}
	return nil
}

// HasVoted implements poll.PollRepository.
func (r *pollRepositoryImpl) HasVoted(ctx context.Context, pollID, voterHash string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM poll_votes WHERE poll_id = $1 AND voter_hash = $2)
	`, pollID, voterHash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check vote: %w", err)
	}
	return exists, nil
}

// CountVotes implements poll.PollRepository.
func (r *pollRepositoryImpl) CountVotes(ctx context.Context, pollID string) ([]poll.OptionCount, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT option_id, COUNT(*)
		FROM poll_votes
		WHERE poll_id = $1
		GROUP BY option_id
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	defer rows.Close()

	var counts []poll.OptionCount
	for rows.Next() {
		var c poll.OptionCount
		if err := rows.Scan(&c.OptionID, &c.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
