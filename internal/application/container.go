package application

import (
	"time"

	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/internal/domain/registry"
	"github.com/linskybing/survey-platform/internal/repository"
	"github.com/linskybing/survey-platform/internal/storage"
	"github.com/sirupsen/logrus"
)

// Options carries the runtime policy shared by the services.
type Options struct {
	AllowReopen        bool
	CapRetryAttempts   int
	MaxAttachmentBytes int64
	Now                func() time.Time
	Logger             logrus.FieldLogger
}

func (o Options) now() func() time.Time {
	if o.Now == nil {
		return time.Now
	}
	return o.Now
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}

type Services struct {
	Access     *AccessResolver
	Form       *FormService
	Submission *SubmissionService
	Review     *ReviewService
	Query      *QueryService
	Attachment *AttachmentService
}

// New wires the services. entities defaults to the repository-backed registry and store
// may be nil when attachments are not configured.
func New(repos *repository.Repos, offices office.Hierarchy, entities registry.EntityRegistry, store storage.ObjectStore, opts Options) *Services {
	if entities == nil {
		entities = repos.Registry
	}
	resolver := NewAccessResolver(repos, offices, opts.now())
	submissions := NewSubmissionService(repos, entities, resolver, opts)
	return &Services{
		Access:     resolver,
		Form:       NewFormService(repos, offices, resolver, opts.logger()),
		Submission: submissions,
		Review:     NewReviewService(repos, resolver, submissions, opts),
		Query:      NewQueryService(repos, offices, resolver),
		Attachment: NewAttachmentService(repos, resolver, store, opts),
	}
}
