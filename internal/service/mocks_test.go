package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

// fakeIssueStore is an in-memory IssueStore faithful to the contract the
// move engine depends on, including ShiftRange's range and exclusion rules.
// columnOrder fixes the column-major ordering ListByProject must produce.
type fakeIssueStore struct {
	mu          sync.Mutex
	issues      map[uuid.UUID]*domain.Issue
	columnOrder map[uuid.UUID]int
}

func newFakeIssueStore() *fakeIssueStore {
	return &fakeIssueStore{
		issues:      make(map[uuid.UUID]*domain.Issue),
		columnOrder: make(map[uuid.UUID]int),
	}
}

func (f *fakeIssueStore) put(issue *domain.Issue) {
	cp := *issue
	f.issues[issue.ID] = &cp
}

func (f *fakeIssueStore) Create(ctx context.Context, issue *domain.Issue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.issues[issue.ID]; ok {
		return store.ErrDuplicate
	}
	f.put(issue)
	return nil
}

func (f *fakeIssueStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue, ok := f.issues[id]
	if !ok {
		return nil, store.ErrIssueNotFound
	}
	cp := *issue
	return &cp, nil
}

func (f *fakeIssueStore) Update(ctx context.Context, issue *domain.Issue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.issues[issue.ID]; !ok {
		return store.ErrIssueNotFound
	}
	f.put(issue)
	return nil
}

func (f *fakeIssueStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.issues[id]; !ok {
		return store.ErrIssueNotFound
	}
	delete(f.issues, id)
	return nil
}

func (f *fakeIssueStore) ShiftRange(ctx context.Context, columnID uuid.UUID, from, to, delta int, exclude *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, issue := range f.issues {
		if issue.ColumnID != columnID {
			continue
		}
		if exclude != nil && issue.ID == *exclude {
			continue
		}
		if issue.Position < from {
			continue
		}
		if to >= 0 && issue.Position > to {
			continue
		}
		issue.Position += delta
	}
	return nil
}

func (f *fakeIssueStore) MaxPosition(ctx context.Context, columnID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := -1
	for _, issue := range f.issues {
		if issue.ColumnID == columnID && issue.Position > max {
			max = issue.Position
		}
	}
	return max, nil
}

func (f *fakeIssueStore) CountInColumn(ctx context.Context, columnID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, issue := range f.issues {
		if issue.ColumnID == columnID {
			n++
		}
	}
	return n, nil
}

func (f *fakeIssueStore) CountChildren(ctx context.Context, parentID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, issue := range f.issues {
		if issue.ParentIssueID != nil && *issue.ParentIssueID == parentID {
			n++
		}
	}
	return n, nil
}

func (f *fakeIssueStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Issue
	for _, issue := range f.issues {
		if issue.ProjectID == projectID {
			cp := *issue
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := f.columnOrder[out[i].ColumnID], f.columnOrder[out[j].ColumnID]
		if ci != cj {
			return ci < cj
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (f *fakeIssueStore) ListByColumn(ctx context.Context, columnID uuid.UUID) ([]*domain.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Issue
	for _, issue := range f.issues {
		if issue.ColumnID == columnID {
			cp := *issue
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeIssueStore) WithTx(tx *sql.Tx) store.IssueStore { return f }

// positionsIn returns the sorted position multiset of a column, for asserting
// the dense-rank invariant.
func (f *fakeIssueStore) positionsIn(columnID uuid.UUID) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int
	for _, issue := range f.issues {
		if issue.ColumnID == columnID {
			out = append(out, issue.Position)
		}
	}
	sort.Ints(out)
	return out
}

// fakeColumnStore serves columns by ID.
type fakeColumnStore struct {
	columns map[uuid.UUID]*domain.Column
}

func newFakeColumnStore(cols ...*domain.Column) *fakeColumnStore {
	f := &fakeColumnStore{columns: make(map[uuid.UUID]*domain.Column)}
	for _, c := range cols {
		f.columns[c.ID] = c
	}
	return f
}

func (f *fakeColumnStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Column, error) {
	col, ok := f.columns[id]
	if !ok {
		return nil, store.ErrColumnNotFound
	}
	cp := *col
	return &cp, nil
}

func (f *fakeColumnStore) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Column, error) {
	var out []*domain.Column
	for _, c := range f.columns {
		if c.BoardID == boardID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeColumnStore) FirstByBoard(ctx context.Context, boardID uuid.UUID) (*domain.Column, error) {
	cols, err := f.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, store.ErrColumnNotFound
	}
	return cols[0], nil
}

func (f *fakeColumnStore) WithTx(tx *sql.Tx) store.ColumnStore { return f }

// fakeBoardStore serves boards by ID.
type fakeBoardStore struct {
	boards map[uuid.UUID]*domain.Board
}

func newFakeBoardStore(boards ...*domain.Board) *fakeBoardStore {
	f := &fakeBoardStore{boards: make(map[uuid.UUID]*domain.Board)}
	for _, b := range boards {
		f.boards[b.ID] = b
	}
	return f
}

func (f *fakeBoardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	b, ok := f.boards[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBoardStore) WithTx(tx *sql.Tx) store.BoardStore { return f }

// fakeHistoryStore records appended entries in order.
type fakeHistoryStore struct {
	mu      sync.Mutex
	entries []*domain.HistoryEntry
}

func (f *fakeHistoryStore) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *entry
	f.entries = append(f.entries, &cp)
	return nil
}

func (f *fakeHistoryStore) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) ([]*domain.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.HistoryEntry
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if e.EntityType == entityType && e.EntityID == entityID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeHistoryStore) WithTx(tx *sql.Tx) store.HistoryStore { return f }

// fieldsFor returns the recorded history fields for one entity, oldest first.
func (f *fakeHistoryStore) fieldsFor(entityID uuid.UUID) []domain.HistoryField {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.HistoryField
	for _, e := range f.entries {
		if e.EntityID == entityID {
			out = append(out, e.Field)
		}
	}
	return out
}

// fakeBroadcaster records every payload pushed to it.
type fakeBroadcaster struct {
	mu        sync.Mutex
	err       error
	snapshots []*BoardSnapshot
	boardIDs  []uuid.UUID
}

func (f *fakeBroadcaster) BroadcastToBoard(ctx context.Context, boardID uuid.UUID, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if snap, ok := payload.(*BoardSnapshot); ok {
		f.snapshots = append(f.snapshots, snap)
	}
	f.boardIDs = append(f.boardIDs, boardID)
	return nil
}

// fakeInvalidator records every invalidated key.
type fakeInvalidator struct {
	mu   sync.Mutex
	err  error
	keys []string
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, keys...)
	return nil
}
