// Package identity manages sender identities: brand names pending regulatory
// approval. Tenants submit; only admins transition pending -> approved|rejected.
package identity

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/axisbulk/axis/internal/model"
	"github.com/axisbulk/axis/internal/repository"
)

var (
	ErrInvalidName = errors.New("sender name must be 1 to 11 characters")
	ErrNameTaken   = errors.New("sender name already submitted")
	ErrNotPending  = errors.New("sender identity is not pending")
)

type Service struct {
	senders repository.SendersRepository
}

func New(senders repository.SendersRepository) *Service {
	return &Service{senders: senders}
}

// Submit registers a brand name for approval. The name is frozen once
// submitted; the tenant cannot mutate it afterwards.
func (s *Service) Submit(ctx context.Context, tenantID int64, name string) (*model.SenderIdentity, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > model.MaxSenderNameLen {
		return nil, ErrInvalidName
	}

	id, err := s.senders.Insert(ctx, tenantID, name)
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil, ErrNameTaken
		}
		return nil, err
	}

	return &model.SenderIdentity{
		ID:       id,
		TenantID: tenantID,
		Name:     name,
		Status:   model.SenderPending,
	}, nil
}

func (s *Service) Approve(ctx context.Context, adminID, identityID int64) error {
	return s.transition(ctx, adminID, identityID, model.SenderApproved)
}

func (s *Service) Reject(ctx context.Context, adminID, identityID int64) error {
	return s.transition(ctx, adminID, identityID, model.SenderRejected)
}

func (s *Service) transition(ctx context.Context, adminID, identityID int64, to model.SenderStatus) error {
	affected, err := s.senders.Transition(ctx, identityID, model.SenderPending, to, adminID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotPending
	}
	return nil
}

func (s *Service) List(ctx context.Context, tenantID int64) ([]model.SenderIdentity, error) {
	return s.senders.ListByTenant(ctx, tenantID)
}
