package service

import (
	"context"
	"fmt"

	"github.com/lusail/account-service/internal/core/domain"
	"github.com/lusail/account-service/internal/core/ports"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func (s *AccountService) ListAccounts(ctx context.Context, input ports.ListAccountsInput) (*ports.ListAccountsResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	items, total, err := s.repo.List(ctx, ports.ListAccountsFilter{Page: page, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListAccountsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.FindByID(ctx, id)
}

// DeleteAccount removes the record and then its hosted image.
func (s *AccountService) DeleteAccount(ctx context.Context, id string) error {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.destroyImage(ctx, account.ProfileImage)
	s.logger.Info().Str("account_id", id).Msg("account deleted by admin")
	return nil
}
