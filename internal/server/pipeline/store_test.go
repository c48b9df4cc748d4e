package pipeline

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/voicediary/internal/common"
	"github.com/dmitrijs2005/voicediary/internal/dbx"
	"github.com/dmitrijs2005/voicediary/internal/server/entrystate"
	"github.com/dmitrijs2005/voicediary/internal/server/models"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/entries"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/expenses"
	"github.com/dmitrijs2005/voicediary/internal/server/repositories/repomanager"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory stand-in for the entries and expenses tables.
// Writes made through a *sql.Tx are staged and applied or dropped once the
// transaction is over, following the commit/rollback order the test
// declared with expectTx.
type memStore struct {
	t  *testing.T
	mu sync.Mutex

	entries  map[string]*models.Entry
	expenses []*models.Expense

	txs      []dbx.DBTX
	staged   map[dbx.DBTX][]func()
	outcomes []bool
	settled  int

	// failures injected by tests
	failUpdate  map[entrystate.Status]error // keyed by target status
	failExpense int                         // fail the n-th expense insert (1-based)
	expenseN    int
}

func newMemStore(t *testing.T) *memStore {
	return &memStore{
		t:          t,
		entries:    map[string]*models.Entry{},
		staged:     map[dbx.DBTX][]func(){},
		failUpdate: map[entrystate.Status]error{},
	}
}

func (s *memStore) put(e *models.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.entries[e.ID] = &cp
}

func (s *memStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	kept := s.expenses[:0]
	for _, x := range s.expenses {
		if x.EntryID != id {
			kept = append(kept, x)
		}
	}
	s.expenses = kept
}

// settle finishes every transaction other than current. Caller holds mu.
func (s *memStore) settle(current dbx.DBTX) {
	for s.settled < len(s.txs) {
		h := s.txs[s.settled]
		if h == current {
			return
		}
		if s.settled >= len(s.outcomes) {
			s.t.Errorf("transaction %d has no declared outcome", s.settled+1)
			return
		}
		if s.outcomes[s.settled] {
			for _, fn := range s.staged[h] {
				fn()
			}
		}
		delete(s.staged, h)
		s.settled++
	}
}

// write applies fn now for plain handles, or stages it for a transaction.
func (s *memStore) write(h dbx.DBTX, fn func()) {
	if _, ok := h.(*sql.Tx); !ok {
		fn()
		return
	}
	s.staged[h] = append(s.staged[h], fn)
}

// touch registers h and settles finished transactions. Caller holds mu.
func (s *memStore) touch(h dbx.DBTX) {
	if _, ok := h.(*sql.Tx); ok {
		if _, seen := s.staged[h]; !seen {
			s.txs = append(s.txs, h)
			s.staged[h] = nil
		}
	}
	s.settle(h)
}

func (s *memStore) entry(id string) *models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(nil)
	e, ok := s.entries[id]
	if !ok {
		return nil
	}
	cp := *e
	return &cp
}

func (s *memStore) expensesOf(id string) []*models.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(nil)
	var out []*models.Expense
	for _, x := range s.expenses {
		if x.EntryID == id {
			out = append(out, x)
		}
	}
	return out
}

type memEntries struct {
	entries.Repository
	s *memStore
	h dbx.DBTX
}

func (r *memEntries) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.touch(r.h)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := r.s.entries[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memEntries) swap(id string, from, to entrystate.Status, apply func(e *models.Entry)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.touch(r.h)
	if err := entrystate.Transition(from, to); err != nil {
		return err
	}
	if err := r.s.failUpdate[to]; err != nil {
		return err
	}
	e, ok := r.s.entries[id]
	if !ok {
		return common.ErrorNotFound
	}
	if e.Status != from {
		return common.ErrStatusConflict
	}
	r.s.write(r.h, func() {
		if cur, ok := r.s.entries[id]; ok {
			cur.Status = to
			if apply != nil {
				apply(cur)
			}
		}
	})
	return nil
}

func (r *memEntries) UpdateStatus(ctx context.Context, id string, from, to entrystate.Status) error {
	return r.swap(id, from, to, nil)
}

func (r *memEntries) SetTranscript(ctx context.Context, id, transcript string, from, to entrystate.Status) error {
	return r.swap(id, from, to, func(e *models.Entry) { e.Transcript = transcript })
}

func (r *memEntries) SetTotalExpense(ctx context.Context, id string, total decimal.Decimal, from, to entrystate.Status) error {
	return r.swap(id, from, to, func(e *models.Entry) { e.TotalExpense = total })
}

func (r *memEntries) SelectUnfinished(ctx context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.touch(r.h)
	var ids []string
	for id, e := range r.s.entries {
		if !entrystate.IsTerminal(e.Status) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type memExpenses struct {
	expenses.Repository
	s *memStore
	h dbx.DBTX
}

func (r *memExpenses) Create(ctx context.Context, x *models.Expense) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.touch(r.h)
	r.s.expenseN++
	if r.s.failExpense > 0 && r.s.expenseN == r.s.failExpense {
		return errInsert
	}
	if _, ok := r.s.entries[x.EntryID]; !ok {
		return errInsert
	}
	cp := *x
	r.s.write(r.h, func() { r.s.expenses = append(r.s.expenses, &cp) })
	return nil
}

type memRepoManager struct {
	repomanager.RepositoryManager
	s *memStore
}

func (m *memRepoManager) Entries(h dbx.DBTX) entries.Repository   { return &memEntries{s: m.s, h: h} }
func (m *memRepoManager) Expenses(h dbx.DBTX) expenses.Repository { return &memExpenses{s: m.s, h: h} }

// expectTx declares the next transaction and whether it commits.
func (s *memStore) expectTx(mock sqlmock.Sqlmock, commit bool) {
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
	s.mu.Lock()
	s.outcomes = append(s.outcomes, commit)
	s.mu.Unlock()
}

func (s *memStore) expectCommits(mock sqlmock.Sqlmock, n int) {
	for range n {
		s.expectTx(mock, true)
	}
}
