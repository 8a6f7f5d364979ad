package tickets

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("ticket not found")
	ErrInvalidTransition = errors.New("ticket status transition not allowed")
)

type Service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) CreateTicket(ctx context.Context, req *Ticket) (*Ticket, error) {
	now := s.now().Unix()
	t := &Ticket{
		ID:          "tkt_" + uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Urgency:     req.Urgency,
		Status:      StatusOpen,
		CreatedBy:   req.CreatedBy,
		Deadline:    req.Deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Urgency == "" {
		t.Urgency = UrgencyMedium
	}

	if err := ValidateTicket(t); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *Service) ListTickets(ctx context.Context, f ListFilter) ([]*Ticket, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

func (s *Service) UpdateTicket(ctx context.Context, id string, u Update) (*Ticket, error) {
	existing, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Title != nil {
		existing.Title = *u.Title
	}
	if u.Description != nil {
		existing.Description = *u.Description
	}
	if u.Urgency != nil {
		existing.Urgency = *u.Urgency
	}
	if u.Deadline != nil {
		if *u.Deadline == 0 {
			existing.Deadline = nil
		} else {
			existing.Deadline = u.Deadline
		}
	}

	if err := ValidateTicket(existing); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// SetStatus moves a ticket to in_work or solved. Taking a ticket into work
// assigns it to the actor.
func (s *Service) SetStatus(ctx context.Context, id, status, actorID string) (*Ticket, error) {
	existing, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(existing.Status, status) {
		return nil, ErrInvalidTransition
	}

	existing.Status = status
	switch status {
	case StatusInWork:
		existing.AssignedTo = actorID
	case StatusSolved:
		solvedAt := s.now().Unix()
		existing.SolvedAt = &solvedAt
		if existing.AssignedTo == "" {
			existing.AssignedTo = actorID
		}
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteTicket removes the ticket and returns its last state.
func (s *Service) DeleteTicket(ctx context.Context, id string) (*Ticket, error) {
	existing, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return existing, nil
}
