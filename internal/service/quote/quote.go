// Package quote prices a raw recipient list against a tenant's rate. It is
// pure read-only: nothing here debits or persists.
package quote

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/axisbulk/axis/internal/repository"
	"github.com/axisbulk/axis/internal/util"
)

var (
	ErrSenderNotAuthorized = errors.New("sender identity not approved for tenant")
	ErrTenantNotFound      = errors.New("tenant not found")
)

const (
	// Single-part messages fit 160 GSM-7 characters; once a message needs
	// concatenation every part carries a UDH and fits 153.
	singleSegmentChars = 160
	multiSegmentChars  = 153
)

type Request struct {
	SenderName string   `json:"sender_name"`
	Message    string   `json:"message"`
	Recipients []string `json:"recipients"`
}

type Quote struct {
	TotalSubmitted    int      `json:"total_submitted"`
	ValidRecipients   []string `json:"valid_recipients"`
	DuplicatesRemoved int      `json:"duplicates_removed"`
	InvalidFormats    int      `json:"invalid_formats"`
	Segments          int      `json:"segments"`
	TenantCost        int64    `json:"tenant_cost"`
	PlatformCost      int64    `json:"platform_cost"`
	Profit            int64    `json:"profit"`
	Balance           int64    `json:"balance"`
	CanAfford         bool     `json:"can_afford"`
}

// Segments computes carrier billing parts for a message body.
func Segments(message string) int {
	n := utf8.RuneCountInString(message)
	if n <= singleSegmentChars {
		return 1
	}
	return (n + multiSegmentChars - 1) / multiSegmentChars
}

// CleanRecipients normalizes, deduplicates (first-seen order) and filters a
// raw phone list. Deterministic: the same input always yields the same output.
func CleanRecipients(raw []string) (valid []string, duplicates, invalid int) {
	seen := make(map[string]struct{}, len(raw))
	for _, entry := range raw {
		digits := util.NormalizePhone(entry)
		if _, ok := seen[digits]; ok {
			duplicates++
			continue
		}
		seen[digits] = struct{}{}
		if !util.ValidPhone(digits) {
			invalid++
			continue
		}
		valid = append(valid, digits)
	}
	return valid, duplicates, invalid
}

// Compute builds a Quote from already-cleaned inputs.
func Compute(message string, valid []string, submitted, duplicates, invalid int, rate, buyRate, balance int64) *Quote {
	segments := Segments(message)
	n := int64(len(valid))
	tenantCost := n * int64(segments) * rate
	platformCost := n * int64(segments) * buyRate

	return &Quote{
		TotalSubmitted:    submitted,
		ValidRecipients:   valid,
		DuplicatesRemoved: duplicates,
		InvalidFormats:    invalid,
		Segments:          segments,
		TenantCost:        tenantCost,
		PlatformCost:      platformCost,
		Profit:            tenantCost - platformCost,
		Balance:           balance,
		CanAfford:         balance >= tenantCost,
	}
}

// Service resolves the sender gate and tenant pricing for quotes.
type Service struct {
	tenants repository.TenantsRepository
	senders repository.SendersRepository
	buyRate int64
}

func New(tenants repository.TenantsRepository, senders repository.SendersRepository, buyRate int64) *Service {
	return &Service{tenants: tenants, senders: senders, buyRate: buyRate}
}

// Quote validates sender authorization and prices the recipient list.
func (s *Service) Quote(ctx context.Context, tenantID int64, req Request) (*Quote, error) {
	ident, err := s.senders.GetApproved(ctx, nil, tenantID, req.SenderName)
	if err != nil {
		return nil, err
	}
	if ident == nil {
		return nil, ErrSenderNotAuthorized
	}

	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}

	valid, dups, invalid := CleanRecipients(req.Recipients)
	return Compute(req.Message, valid, len(req.Recipients), dups, invalid, tenant.Rate, s.buyRate, tenant.Balance), nil
}
