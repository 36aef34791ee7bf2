package response

import "github.com/linskybing/survey-platform/pkg/errs"

type ErrorResponse struct {
	Error      string           `json:"error"`
	Kind       errs.Kind        `json:"kind,omitempty"`
	Violations []errs.Violation `json:"violations,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type TokenResponse struct {
	Token      string `json:"token"`
	UserID     uint   `json:"user_id"`
	UserType   string `json:"user_type"`
	OfficeCode string `json:"office_code"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
