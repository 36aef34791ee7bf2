package handlers

import (
	"github.com/linskybing/survey-platform/internal/application"
	"gorm.io/gorm"
)

type Handlers struct {
	Form       *FormHandler
	Submission *SubmissionHandler
	Health     *HealthHandler
}

func New(svc *application.Services, db *gorm.DB) *Handlers {
	return &Handlers{
		Form:       NewFormHandler(svc.Form, svc.Query, svc.Attachment),
		Submission: NewSubmissionHandler(svc.Submission, svc.Review, svc.Query),
		Health:     NewHealthHandler(db),
	}
}
