package application

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/linskybing/survey-platform/internal/domain/form"
	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/internal/repository"
	"github.com/linskybing/survey-platform/internal/testutils"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	mohaUser     = office.Caller{UserID: 1, Type: office.UserTypeMOHA, OfficeCode: "MOHA"}
	districtD01  = office.Caller{UserID: 2, Type: office.UserTypeDistrict, OfficeCode: "D01"}
	divisionDV01 = office.Caller{UserID: 3, Type: office.UserTypeDivision, OfficeCode: "DV01"}
	gnG001       = office.Caller{UserID: 4, Type: office.UserTypeGN, OfficeCode: "G001"}
	gnG002       = office.Caller{UserID: 5, Type: office.UserTypeGN, OfficeCode: "G002"}
	gnG003       = office.Caller{UserID: 6, Type: office.UserTypeGN, OfficeCode: "G003"}
	divisionDV02 = office.Caller{UserID: 7, Type: office.UserTypeDivision, OfficeCode: "DV02"}
)

// testClock is a settable clock shared by the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db    *gorm.DB
	repos *repository.Repos
	svc   *Services
	clock *testClock
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	conn := testutils.NewTestDB(t)
	testutils.SeedDirectory(t, conn)

	clock := &testClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	opts.Now = clock.Now
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	if opts.CapRetryAttempts == 0 {
		opts.CapRetryAttempts = 3
	}
	repos := repository.NewRepositories(conn)
	return &testEnv{
		db:    conn,
		repos: repos,
		svc:   New(repos, testutils.Tree(t), nil, nil, opts),
		clock: clock,
	}
}

// newForm creates a family form owned by districtD01 with a required text field and an
// optional number field.
func (e *testEnv) newForm(t *testing.T, code string, max int) *form.Form {
	t.Helper()
	f, err := e.svc.Form.CreateForm(districtD01, form.CreateFormDTO{
		Code:                    code,
		Name:                    "Survey " + code,
		TargetEntity:            form.TargetFamily,
		MaxSubmissionsPerEntity: max,
	})
	require.NoError(t, err)

	_, err = e.svc.Form.AddField(districtD01, f.ID, form.CreateFieldDTO{
		FieldCode: "head_name", Label: "Head of household", Type: form.FieldText, IsRequired: true,
	})
	require.NoError(t, err)
	_, err = e.svc.Form.AddField(districtD01, f.ID, form.CreateFieldDTO{
		FieldCode: "members", Label: "Members", Type: form.FieldNumber,
		ValidationRules: form.RuleList{{Name: "min", Value: "1"}},
	})
	require.NoError(t, err)
	return f
}

func (e *testEnv) assign(t *testing.T, formID uint, in form.CreateAssignmentDTO) {
	t.Helper()
	_, err := e.svc.Form.CreateAssignment(districtD01, formID, in)
	require.NoError(t, err)
}

func strp(s string) *string { return &s }
func uintp(v uint) *uint { return &v }
func boolp(v bool) *bool { return &v }
