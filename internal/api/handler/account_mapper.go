package handler

import (
	"github.com/samber/lo"

	"github.com/lusail/account-service/internal/core/domain"
	"github.com/lusail/account-service/internal/core/ports"
)

// --- Service result → HTTP response ---

func toAccountResponse(a *domain.Account) accountResponse {
	resp := accountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt.UTC(),
		UpdatedAt: a.UpdatedAt.UTC(),
	}
	if a.ProfileImage != nil {
		resp.ProfilePic = &profilePicResponse{ID: a.ProfileImage.ExternalID, URL: a.ProfileImage.URL}
	}
	return resp
}

func toAccountEnvelope(a *domain.Account, message string) accountEnvelope {
	resp := toAccountResponse(a)
	return accountEnvelope{Success: true, Message: message, User: &resp}
}

func toAccountListEnvelope(r *ports.ListAccountsResult) accountListEnvelope {
	return accountListEnvelope{
		Success: true,
		Users: lo.Map(r.Items, func(a *domain.Account, _ int) accountResponse {
			return toAccountResponse(a)
		}),
		Pagination: paginationResponse{
			Page:       r.Page,
			Limit:      r.Limit,
			Total:      r.Total,
			TotalPages: r.TotalPages,
		},
	}
}
