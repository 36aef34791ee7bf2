package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/linskybing/survey-platform/pkg/errs"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestRetryOnlyRetriesConflicts(t *testing.T) {
	calls := 0
	err := retry(3, func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("insert: %w", &pgconn.PgError{Code: "40001"})
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = retry(5, func() error {
		calls++
		return &pq.Error{Code: "40P01"}
	})
	assert.Error(t, err)
	assert.Equal(t, 5, calls)

	calls = 0
	err = retry(5, func() error {
		calls++
		return errs.Limit("cap reached")
	})
	assert.True(t, errors.Is(err, errs.ErrLimitExceeded))
	assert.Equal(t, 1, calls)
}

func TestLookupMapsMissingRows(t *testing.T) {
	assert.True(t, errors.Is(lookup(gorm.ErrRecordNotFound, "form", 3), errs.ErrNotFound))
	assert.Nil(t, lookup(nil, "form", 3))

	err := lookup(errors.New("boom"), "form", 3)
	assert.Equal(t, errs.Kind(""), errs.KindOf(err))
}
