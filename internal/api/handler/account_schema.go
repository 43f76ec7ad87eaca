package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message"`
}

// --- Request types ---

// signupRequest is bound from multipart form fields; the image travels as profilePic.
type signupRequest struct {
	Name     string `json:"name"     form:"name"`
	Email    string `json:"email"    form:"email"    validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	Role     string `json:"role"     form:"role"     validate:"omitempty,oneof=user admin"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Name string `json:"name" form:"name"`
	Role string `json:"role" form:"role" validate:"omitempty,oneof=user admin"`
}

type updatePasswordRequest struct {
	OldPassword     string `json:"oldPassword"     validate:"required"`
	Password        string `json:"password"        validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type otpRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp"   validate:"required,numeric"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type listUsersQuery struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// --- Response types ---

type profilePicResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type accountResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	Role       string              `json:"role"`
	Status     string              `json:"status"`
	ProfilePic *profilePicResponse `json:"profilePic,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type accountEnvelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	User    *accountResponse `json:"user"`
}

type paginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type accountListEnvelope struct {
	Success    bool               `json:"success"`
	Users      []accountResponse  `json:"users"`
	Pagination paginationResponse `json:"pagination"`
}
