package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/linskybing/survey-platform/internal/domain/form"
	"github.com/linskybing/survey-platform/internal/domain/office"
	storemock "github.com/linskybing/survey-platform/internal/storage/mock"
	"github.com/linskybing/survey-platform/internal/testutils"
	"github.com/linskybing/survey-platform/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadAttachment(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := storemock.NewMockObjectStore(ctrl)

	env := newTestEnv(t, Options{})
	env.svc = New(env.repos, testutils.Tree(t), nil, store, Options{MaxAttachmentBytes: 16, Now: env.clock.Now, Logger: quietLogger()})
	f := env.newForm(t, "with_files", 0)
	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeGN, AssignedToOfficeCode: strp("G001")})

	store.EXPECT().
		Put(gomock.Any(), gomock.Any(), "application/pdf", gomock.Any(), int64(5)).
		DoAndReturn(func(_ context.Context, key, _ string, _ io.Reader, _ int64) error {
			assert.True(t, strings.HasSuffix(key, ".pdf"), key)
			return nil
		})

	att, err := env.svc.Attachment.Upload(context.Background(), gnG001, f.ID, "deed.pdf", "application/pdf", 5, strings.NewReader("%PDF-"))
	require.NoError(t, err)
	assert.Equal(t, "deed.pdf", att.Filename)
	assert.Contains(t, att.Key, "forms/")

	_, err = env.svc.Attachment.Upload(context.Background(), gnG002, f.ID, "deed.pdf", "application/pdf", 5, strings.NewReader("%PDF-"))
	assert.True(t, errors.Is(err, errs.ErrPermission))

	_, err = env.svc.Attachment.Upload(context.Background(), gnG001, f.ID, "big.bin", "", 17, strings.NewReader(strings.Repeat("x", 17)))
	assert.True(t, errors.Is(err, errs.ErrValidation))

	store.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("bucket unavailable"))
	_, err = env.svc.Attachment.Upload(context.Background(), gnG001, f.ID, "deed.pdf", "application/pdf", 5, strings.NewReader("%PDF-"))
	assert.EqualError(t, err, "bucket unavailable")
}

func TestUploadWithoutStore(t *testing.T) {
	env := newTestEnv(t, Options{})
	f := env.newForm(t, "no_store", 0)
	_, err := env.svc.Attachment.Upload(context.Background(), districtD01, f.ID, "a.txt", "text/plain", 1, strings.NewReader("a"))
	assert.True(t, errors.Is(err, errs.ErrState))
}
