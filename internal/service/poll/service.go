package poll

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/poll"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

// EventResults is the SSE event name carrying a poll.ResultsResponse.
const EventResults = "results"

type PollServiceImpl struct {
	tx          database.TxManager
	repo        poll.PollRepository
	hub         *sse.Hub
	voterSecret []byte
	now         func() time.Time
}

func NewPollService(tx database.TxManager, repo poll.PollRepository, hub *sse.Hub, voterSecret string) poll.PollService {
	return &PollServiceImpl{
		tx:          tx,
		repo:        repo,
		hub:         hub,
		voterSecret: []byte(voterSecret),
		now:         time.Now,
	}
}

// voterHash identifies a voter within one poll without storing who they are.
func (s *PollServiceImpl) voterHash(pollID, userID string) string {
	mac := hmac.New(sha256.New, s.voterSecret)
	mac.Write([]byte(pollID))
	mac.Write([]byte{0})
	mac.Write([]byte(userID))
	return hex.EncodeToString(mac.Sum(nil))
}

func requirePermission(ctx context.Context, permission user.Permission) (user.Principal, error) {
	principal, err := user.PrincipalFromContext(ctx)
	if err != nil {
		return user.Principal{}, err
	}
	if !user.HasPermission(principal.Role, permission) {
		return user.Principal{}, user.ErrInsufficientPermissions
	}
	return principal, nil
}

// Create implements poll.PollService.
func (s *PollServiceImpl) Create(ctx context.Context, req poll.CreatePollRequest) (poll.PollResponse, error) {
	principal, err := requirePermission(ctx, user.PermissionPollCreate)
	if err != nil {
		return poll.PollResponse{}, err
	}
	if err := req.Validate(s.now()); err != nil {
		return poll.PollResponse{}, err
	}

	pollID, err := uuid.NewV7()
	if err != nil {
		return poll.PollResponse{}, fmt.Errorf("failed to generate poll id: %w", err)
	}
	p := poll.Poll{
		ID:          pollID.String(),
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   principal.UserID,
		Status:      poll.StatusOpen,
		ClosesAt:    req.ParsedClosesAt(),
	}
	for _, label := range req.TrimmedOptions() {
		optionID, err := uuid.NewV7()
		if err != nil {
			return poll.PollResponse{}, fmt.Errorf("failed to generate option id: %w", err)
		}
		p.Options = append(p.Options, poll.Option{ID: optionID.String(), PollID: p.ID, Label: label})
	}

	var created poll.Poll
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err = s.repo.Create(ctx, p)
		return err
	})
	if err != nil {
		return poll.PollResponse{}, err
	}

	slog.Info("poll created", "poll_id", created.ID, "options", len(created.Options))
	return created.ToResponse(), nil
}

// getPoll loads a poll by id. Malformed ids are reported as missing polls.
func (s *PollServiceImpl) getPoll(ctx context.Context, id string) (poll.Poll, error) {
	if !validator.IsValidUUID(id) {
		return poll.Poll{}, poll.ErrPollNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Get implements poll.PollService.
func (s *PollServiceImpl) Get(ctx context.Context, id string) (poll.PollResponse, error) {
	if _, err := user.PrincipalFromContext(ctx); err != nil {
		return poll.PollResponse{}, err
	}
	p, err := s.getPoll(ctx, id)
	if err != nil {
		return poll.PollResponse{}, err
	}
	return p.ToResponse(), nil
}

// List implements poll.PollService.
func (s *PollServiceImpl) List(ctx context.Context, filter poll.ListFilter) ([]poll.PollResponse, error) {
	if _, err := user.PrincipalFromContext(ctx); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	polls, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]poll.PollResponse, 0, len(polls))
	for _, p := range polls {
		responses = append(responses, p.ToResponse())
	}
	return responses, nil
}

// Vote implements poll.PollService.
func (s *PollServiceImpl) Vote(ctx context.Context, req poll.VoteRequest) (poll.ResultsResponse, error) {
	principal, err := requirePermission(ctx, user.PermissionPollVote)
	if err != nil {
		return poll.ResultsResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return poll.ResultsResponse{}, err
	}

	var results poll.ResultsResponse
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.getPoll(ctx, req.PollID)
		if err != nil {
			return err
		}
		if !p.AcceptsVotes(s.now()) {
			return poll.ErrPollClosed
		}
		if !p.HasOption(req.OptionID) {
			return poll.ErrOptionNotFound
		}

		if err := s.repo.CreateVote(ctx, poll.Vote{
			PollID:    p.ID,
			OptionID:  req.OptionID,
			VoterHash: s.voterHash(p.ID, principal.UserID),
		}); err != nil {
			return err
		}

		results, err = s.results(ctx, p)
		return err
	})
	if err != nil {
		return poll.ResultsResponse{}, err
	}

	s.publish(results)
	results.HasVoted = true
	return results, nil
}

func (s *PollServiceImpl) results(ctx context.Context, p poll.Poll) (poll.ResultsResponse, error) {
	counts, err := s.repo.CountVotes(ctx, p.ID)
	if err != nil {
		return poll.ResultsResponse{}, err
	}
	return poll.BuildResults(p, counts), nil
}

// publish broadcasts results to SSE subscribers. HasVoted is per caller and never broadcast.
func (s *PollServiceImpl) publish(results poll.ResultsResponse) {
	results.HasVoted = false
	s.hub.Publish(results.PollID, sse.Event{Event: EventResults, Data: results})
}

// Results implements poll.PollService.
func (s *PollServiceImpl) Results(ctx context.Context, id string) (poll.ResultsResponse, error) {
	principal, err := user.PrincipalFromContext(ctx)
	if err != nil {
		return poll.ResultsResponse{}, err
	}

	p, err := s.getPoll(ctx, id)
	if err != nil {
		return poll.ResultsResponse{}, err
	}
	results, err := s.results(ctx, p)
	if err != nil {
		return poll.ResultsResponse{}, err
	}
	results.HasVoted, err = s.repo.HasVoted(ctx, p.ID, s.voterHash(p.ID, principal.UserID))
	if err != nil {
		return poll.ResultsResponse{}, err
	}
	return results, nil
}

// Close implements poll.PollService.
func (s *PollServiceImpl) Close(ctx context.Context, id string) (poll.ResultsResponse, error) {
	principal, err := user.PrincipalFromContext(ctx)
	if err != nil {
		return poll.ResultsResponse{}, err
	}

	p, err := s.getPoll(ctx, id)
	if err != nil {
		return poll.ResultsResponse{}, err
	}
	if p.CreatedBy != principal.UserID && !user.HasPermission(principal.Role, user.PermissionPollManage) {
		return poll.ResultsResponse{}, poll.ErrNotPollOwner
	}

	now := s.now()
	if err := s.repo.Close(ctx, id, now); err != nil {
		return poll.ResultsResponse{}, err
	}
	p.Status = poll.StatusClosed
	p.ClosedAt = &now

	results, err := s.results(ctx, p)
	if err != nil {
		return poll.ResultsResponse{}, err
	}
	s.publish(results)

	slog.Info("poll closed", "poll_id", id, "closed_by", principal.UserID)
	return results, nil
}

// CloseExpired implements poll.PollService.
func (s *PollServiceImpl) CloseExpired(ctx context.Context) (int, error) {
	ids, err := s.repo.CloseExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			slog.Error("failed to load closed poll", "poll_id", id, "error", err)
			continue
		}
		results, err := s.results(ctx, p)
		if err != nil {
			slog.Error("failed to count votes of closed poll", "poll_id", id, "error", err)
			continue
		}
		s.publish(results)
	}
	return len(ids), nil
}

// Subscribe implements poll.PollService.
func (s *PollServiceImpl) Subscribe(ctx context.Context, id string) (<-chan poll.ResultsResponse, func(), error) {
	if _, err := s.getPoll(ctx, id); err != nil {
		return nil, nil, err
	}

	events, unsubscribe := s.hub.Subscribe(id)
	out := make(chan poll.ResultsResponse, 1)
	done := make(chan struct{})

	go func() {
		defer close(out)
		for ev := range events {
			results, ok := ev.Data.(poll.ResultsResponse)
			if !ok {
				continue
			}
			select {
			case out <- results:
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			close(done)
			unsubscribe()
		})
	}
	return out, cleanup, nil
}
