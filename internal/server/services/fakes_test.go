package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/voicediary/internal/common"
	"github.com/dmitrijs2005/voicediary/internal/dbx"
	"github.com/dmitrijs2005/voicediary/internal/server/config"
	"github.com/dmitrijs2005/voicediary/internal/server/models"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/entries"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/expenses"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/quotas"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/voicediary/internal/timex"
)

// -------- test fakes --------

type fakeQuotasRepo struct {
	quotas.Repository
	mu   sync.Mutex
	rows map[string]*models.UserQuota
	err  error

	locked   []string
	incCalls int
}

func newFakeQuotas(qs ...*models.UserQuota) *fakeQuotasRepo {
	f := &fakeQuotasRepo{rows: map[string]*models.UserQuota{}}
	for _, q := range qs {
		f.rows[q.UserID] = q
	}
	return f
}

func (f *fakeQuotasRepo) Create(ctx context.Context, q *models.UserQuota) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[q.UserID]; !ok {
		cp := *q
		f.rows[q.UserID] = &cp
	}
	return nil
}

func (f *fakeQuotasRepo) Get(ctx context.Context, userID string) (*models.UserQuota, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	q, ok := f.rows[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuotasRepo) GetForUpdate(ctx context.Context, userID string) (*models.UserQuota, error) {
	f.mu.Lock()
	f.locked = append(f.locked, userID)
	f.mu.Unlock()
	return f.Get(ctx, userID)
}

func (f *fakeQuotasRepo) IncrementEntryCount(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.rows[userID]
	if !ok {
		return 0, common.ErrorNotFound
	}
	f.incCalls++
	q.EntryCount++
	return q.EntryCount, nil
}

// IncrementDailyQuestions mirrors the single-statement SQL update.
func (f *fakeQuotasRepo) IncrementDailyQuestions(ctx context.Context, userID string, today time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.rows[userID]
	if !ok {
		return 0, common.ErrorNotFound
	}
	if q.DailyQuestionDate != nil && timex.SameDate(*q.DailyQuestionDate, today) {
		q.DailyQuestionCount++
	} else {
		q.DailyQuestionCount = 1
	}
	d := timex.Date(today)
	q.DailyQuestionDate = &d
	return q.DailyQuestionCount, nil
}

func (f *fakeQuotasRepo) StartTrial(ctx context.Context, userID string, start, end time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.rows[userID]
	if !ok {
		return common.ErrorNotFound
	}
	q.SubscriptionKind = models.SubscriptionTrial
	q.TrialStart, q.TrialEnd = &start, &end
	return nil
}

func (f *fakeQuotasRepo) SetPremium(ctx context.Context, userID string, premium bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.rows[userID]
	if !ok {
		return common.ErrorNotFound
	}
	q.IsPremium = premium
	q.SubscriptionKind = models.SubscriptionFree
	if premium {
		q.SubscriptionKind = models.SubscriptionPremium
	}
	return nil
}

type fakeEntriesRepo struct {
	entries.Repository
	created   []*models.Entry
	createErr error

	byID   map[string]*models.Entry
	getErr error

	listArgs [3]any
	list     []*models.Entry

	deleted   []string
	deleteErr error
}

func (f *fakeEntriesRepo) Create(ctx context.Context, e *models.Entry) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, e)
	return nil
}

func (f *fakeEntriesRepo) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return e, nil
}

func (f *fakeEntriesRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Entry, error) {
	f.listArgs = [3]any{userID, limit, offset}
	return f.list, nil
}

func (f *fakeEntriesRepo) Delete(ctx context.Context, id, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeExpensesRepo struct {
	expenses.Repository
	byEntry map[string][]*models.Expense
}

func (f *fakeExpensesRepo) ListByEntry(ctx context.Context, entryID string) ([]*models.Expense, error) {
	return f.byEntry[entryID], nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	q *fakeQuotasRepo
	e *fakeEntriesRepo
	x *fakeExpensesRepo
}

func (m *fakeRepoManager) Quotas(db dbx.DBTX) quotas.Repository     { return m.q }
func (m *fakeRepoManager) Entries(db dbx.DBTX) entries.Repository   { return m.e }
func (m *fakeRepoManager) Expenses(db dbx.DBTX) expenses.Repository { return m.x }

type fakeQueue struct {
	ids []string
	err error
}

func (q *fakeQueue) Enqueue(ctx context.Context, id string) error {
	if q.err != nil {
		return q.err
	}
	q.ids = append(q.ids, id)
	return nil
}

type fakeAudio struct {
	gotUser, gotExt string
	err             error
}

func (a *fakeAudio) PresignPut(ctx context.Context, userID, ext string) (string, string, error) {
	a.gotUser, a.gotExt = userID, ext
	if a.err != nil {
		return "", "", a.err
	}
	return "users/" + userID + "/k" + ext, "http://upload", nil
}

// -------- helpers --------

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{FreeEntryLimit: 50, DailyQuestionLimit: 5}
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func ptr[T any](v T) *T { return &v }

var errBoom = errors.New("boom")
