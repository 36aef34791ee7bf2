//go:build integration

package application

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/linskybing/survey-platform/internal/domain/form"
	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/internal/domain/submission"
	"github.com/linskybing/survey-platform/internal/repository"
	"github.com/linskybing/survey-platform/internal/testutils"
	"github.com/linskybing/survey-platform/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := testutils.NewPostgresDB(t)
	testutils.SeedDirectory(t, conn)

	clock := &testClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	repos := repository.NewRepositories(conn)
	return &testEnv{
		db:    conn,
		repos: repos,
		svc: New(repos, testutils.Tree(t), nil, nil, Options{
			Now:              clock.Now,
			Logger:           quietLogger(),
			CapRetryAttempts: 5,
		}),
		clock: clock,
	}
}

func TestPostgresCapHoldsUnderParallelSubmits(t *testing.T) {
	env := newPostgresEnv(t)
	f := env.newForm(t, "pg_capped", 2)
	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeGN})

	const writers = 12
	var wg sync.WaitGroup
	results := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", false))
		}(i)
	}
	wg.Wait()

	ok, limited := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, errs.ErrLimitExceeded):
			limited++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 2, ok)
	assert.Equal(t, writers-2, limited)

	n, err := env.repos.Submission.CountCounted(f.ID, submission.EntityKey{Type: form.TargetFamily, FamilyID: "FAM-001"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestPostgresParallelFinalizeOfOneDraft(t *testing.T) {
	env := newPostgresEnv(t)
	f := env.newForm(t, "pg_finalize", 1)
	env.assign(t, f.ID, form.CreateAssignmentDTO{AssignedToUserType: office.UserTypeGN})

	draft, err := env.svc.Submission.Submit(gnG001, f.ID, familyInput("FAM-001", true))
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	results := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub, err := env.svc.Submission.Finalize(gnG001, draft.ID)
			if err == nil && sub.Status != submission.StatusSubmitted {
				err = errors.New("unexpected status " + string(sub.Status))
			}
			results[i] = err
		}(i)
	}
	wg.Wait()

	for _, err := range results {
		assert.NoError(t, err)
	}
	n, err := env.repos.Submission.CountCounted(f.ID, submission.EntityKey{Type: form.TargetFamily, FamilyID: "FAM-001"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
