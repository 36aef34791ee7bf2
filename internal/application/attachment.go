package application

import (
	"context"
	"io"

	"github.com/linskybing/survey-platform/internal/domain/form"
	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/internal/repository"
	"github.com/linskybing/survey-platform/internal/storage"
	"github.com/linskybing/survey-platform/pkg/errs"
	"github.com/sirupsen/logrus"
)

type Attachment struct {
	Key         string `json:"key" example:"forms/3/4b0c9f3e-7f0e-4d8c-9a55-54e5d1c1a0c2.pdf"`
	Filename    string `json:"filename" example:"deed.pdf"`
	ContentType string `json:"content_type" example:"application/pdf"`
	Size        int64  `json:"size" example:"20480"`
}

// AttachmentService stores uploads for file fields. The returned key is what a file
// field's answer holds.
type AttachmentService struct {
	repos    *repository.Repos
	resolver *AccessResolver
	store    storage.ObjectStore
	maxBytes int64
	log      logrus.FieldLogger
}

func NewAttachmentService(repos *repository.Repos, resolver *AccessResolver, store storage.ObjectStore, opts Options) *AttachmentService {
	return &AttachmentService{
		repos:    repos,
		resolver: resolver,
		store:    store,
		maxBytes: opts.MaxAttachmentBytes,
		log:      opts.logger(),
	}
}

func (s *AttachmentService) Upload(ctx context.Context, caller office.Caller, formID uint, filename, contentType string, size int64, r io.Reader) (*Attachment, error) {
	if s.store == nil {
		return nil, errs.State("attachment storage is not configured")
	}
	f, err := s.repos.Form.GetFormByID(formID)
	if err != nil {
		return nil, lookup(err, "form", formID)
	}
	acc, err := s.resolver.Resolve(&f, caller)
	if err != nil {
		return nil, err
	}
	if !acc.CanFill {
		if acc.ExpiredMatch {
			return nil, errs.Expired("your assignment on form %s has expired", f.Code)
		}
		return nil, errs.Permission("you are not assigned to fill form %s", f.Code)
	}
	if size <= 0 {
		return nil, errs.FieldInvalid("file", form.RuleRequired, "file is empty")
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, errs.FieldInvalid("file", "max", "file is too large")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.AttachmentKey(formID, filename)
	if err := s.store.Put(ctx, key, contentType, r, size); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"form_id": formID, "key": key, "actor": caller.UserID}).Info("attachment stored")
	return &Attachment{Key: key, Filename: filename, ContentType: contentType, Size: size}, nil
}
