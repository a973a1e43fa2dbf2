package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/store"
)

// testEnv wires a BoardService over in-memory stores and a sqlmock database
// that only supplies the transaction boundaries.
type testEnv struct {
	db          *sqlmockDB
	issues      *fakeIssueStore
	columns     *fakeColumnStore
	boards      *fakeBoardStore
	history     *fakeHistoryStore
	broadcaster *fakeBroadcaster
	cache       *fakeInvalidator
	svc         BoardService

	tenantID  uuid.UUID
	projectID uuid.UUID
	boardID   uuid.UUID
	colA      *domain.Column
	colB      *domain.Column
	a0, a1, a2 *domain.Issue
}

type sqlmockDB struct {
	mock sqlmock.Sqlmock
}

// expectTx registers one committed transaction on the mock database.
func (m *sqlmockDB) expectTx() {
	m.mock.ExpectBegin()
	m.mock.ExpectCommit()
}

// expectRollback registers one rolled-back transaction on the mock database.
func (m *sqlmockDB) expectRollback() {
	m.mock.ExpectBegin()
	m.mock.ExpectRollback()
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{
		db:        &sqlmockDB{mock: mock},
		tenantID:  uuid.New(),
		projectID: uuid.New(),
		boardID:   uuid.New(),
	}

	env.colA = &domain.Column{
		ID:      uuid.New(),
		BoardID: env.boardID,
		Name:    "To Do",
		Position: 0,
	}
	env.colB = &domain.Column{
		ID:       uuid.New(),
		BoardID:  env.boardID,
		Name:     "Done",
		Category: "complete",
		Position: 1,
	}

	env.issues = newFakeIssueStore()
	env.issues.columnOrder[env.colA.ID] = 0
	env.issues.columnOrder[env.colB.ID] = 1
	env.columns = newFakeColumnStore(env.colA, env.colB)
	env.boards = newFakeBoardStore(&domain.Board{
		ID:        env.boardID,
		TenantID:  env.tenantID,
		ProjectID: env.projectID,
		Name:      "Sprint board",
	})
	env.history = &fakeHistoryStore{}
	env.broadcaster = &fakeBroadcaster{}
	env.cache = &fakeInvalidator{}

	// Three issues in column A at positions 0, 1, 2.
	for i := 0; i < 3; i++ {
		issue := env.seedIssue(t, env.colA.ID, i)
		switch i {
		case 0:
			env.a0 = issue
		case 1:
			env.a1 = issue
		case 2:
			env.a2 = issue
		}
	}

	notifier := NewNotifier(env.issues, env.broadcaster, testLogger())

	svc, err := NewBoardService(db, env.issues, env.columns, env.boards,
		env.history, notifier, env.cache, testLogger())
	require.NoError(t, err)
	env.svc = svc

	return env
}

func (env *testEnv) seedIssue(t *testing.T, columnID uuid.UUID, position int) *domain.Issue {
	t.Helper()
	issue, err := domain.NewIssue(env.tenantID, env.projectID, env.boardID, columnID, "Seeded issue")
	require.NoError(t, err)
	issue.Position = position
	issue.Status = "To Do"
	require.NoError(t, env.issues.Create(context.Background(), issue))
	return issue
}

func (env *testEnv) actor() domain.Actor {
	return domain.Actor{ID: uuid.New(), TenantID: env.tenantID}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// assertDense fails unless the column's positions are exactly 0..N-1.
func assertDense(t *testing.T, issues *fakeIssueStore, columnID uuid.UUID) {
	t.Helper()
	positions := issues.positionsIn(columnID)
	for i, p := range positions {
		assert.Equal(t, i, p, "positions must be dense and zero-based, got %v", positions)
	}
}

func TestCreateIssueAppendsAtTail(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.db.expectTx()

	created, err := env.svc.CreateIssue(context.Background(), CreateIssueRequest{
		ColumnID: env.colA.ID,
		Title:    "New issue",
	}, env.actor())

	require.NoError(t, err)
	assert.Equal(t, 3, created.Position, "new issue lands one past the highest occupied rank")
	assert.Equal(t, env.projectID, created.ProjectID, "project derived from the board")
	assert.Equal(t, env.tenantID, created.TenantID)
	assertDense(t, env.issues, env.colA.ID)
}

func TestCreateIssueIntoEmptyColumn(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.db.expectTx()

	created, err := env.svc.CreateIssue(context.Background(), CreateIssueRequest{
		ColumnID: env.colB.ID,
		Title:    "First in column",
	}, env.actor())

	require.NoError(t, err)
	assert.Equal(t, 0, created.Position)
}

func TestCreateIssueStatusDefaults(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the column name", func(t *testing.T) {
		env := newTestEnv(t)
		env.db.expectTx()

		created, err := env.svc.CreateIssue(context.Background(), CreateIssueRequest{
			ColumnID: env.colB.ID,
			Title:    "Done already",
		}, env.actor())

		require.NoError(t, err)
		assert.Equal(t, "Done", created.Status)
		assert.Equal(t, "complete", created.Category, "category always follows the column")
	})

	t.Run("explicit status wins", func(t *testing.T) {
		env := newTestEnv(t)
		env.db.expectTx()

		created, err := env.svc.CreateIssue(context.Background(), CreateIssueRequest{
			ColumnID: env.colB.ID,
			Title:    "Custom status",
			Status:   "Shipped",
		}, env.actor())

		require.NoError(t, err)
		assert.Equal(t, "Shipped", created.Status)
	})
}

func TestCreateIssueRecordsHistoryAndSideEffects(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.db.expectTx()
	actor := env.actor()

	created, err := env.svc.CreateIssue(context.Background(), CreateIssueRequest{
		ColumnID: env.colA.ID,
		Title:    "Audited issue",
	}, actor)
	require.NoError(t, err)

	fields := env.history.fieldsFor(created.ID)
	require.Len(t, fields, 1)
	assert.Equal(t, domain.HistoryFieldCreated, fields[0])

	require.Len(t, env.broadcaster.snapshots, 1)
	snap := env.broadcaster.snapshots[0]
	assert.Equal(t, BoardActionCreate, snap.Action)
	assert.Equal(t, env.boardID, snap.BoardID)
	assert.Equal(t, actor.ID, snap.ActorID)
	assert.Len(t, snap.Issues, 4, "snapshot carries the full project issue list")

	assert.Contains(t, env.cache.keys, projectIssuesKey(env.projectID))
	assert.Contains(t, env.cache.keys, issueKey(created.ID))
	assert.Contains(t, env.cache.keys, columnIssuesKey(env.colA.ID))
}

func TestCreateIssueRejectsCrossProjectParent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	// Parent lives in a different project.
	otherProject := uuid.New()
	parent, err := domain.NewIssue(env.tenantID, otherProject, uuid.New(), uuid.New(), "Foreign parent")
	require.NoError(t, err)
	require.NoError(t, env.issues.Create(context.Background(), parent))

	env.db.expectRollback()

	_, err = env.svc.CreateIssue(context.Background(), CreateIssueRequest{
		ColumnID:      env.colA.ID,
		Title:         "Orphan",
		ParentIssueID: &parent.ID,
	}, env.actor())

	assert.ErrorIs(t, err, ErrProjectMismatch)
	assert.Empty(t, env.broadcaster.snapshots, "failed creation must not broadcast")
}

func TestCreateIssueUnknownColumn(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.db.expectRollback()

	_, err := env.svc.CreateIssue(context.Background(), CreateIssueRequest{
		ColumnID: uuid.New(),
		Title:    "Nowhere",
	}, env.actor())

	assert.ErrorIs(t, err, store.ErrColumnNotFound)
}

func TestMoveIssueRejectsNegativePosition(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	// Validation fires before the transaction opens.
	err := env.svc.MoveIssue(context.Background(), env.a0.ID, env.colA.ID, env.colA.ID, -1, env.actor())
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestMoveIssueSameColumnDown(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.db.expectTx()

	err := env.svc.MoveIssue(context.Background(), env.a0.ID, env.colA.ID, env.colA.ID, 2, env.actor())
	require.NoError(t, err)

	moved, _ := env.issues.GetByID(context.Background(), env.a0.ID)
	assert.Equal(t, 2, moved.Position)

	shifted1, _ := env.issues.GetByID(context.Background(), env.a1.ID)
	shifted2, _ := env.issues.GetByID(context.Background(), env.a2.ID)
	assert.Equal(t, 0, shifted1.Position, "intermediate issues step up one rank")
	assert.Equal(t, 1, shifted2.Position)
	assertDense(t, env.issues, env.colA.ID)

	fields := env.history.fieldsFor(env.a0.ID)
	require.Len(t, fields, 1)
	assert.Equal(t, domain.HistoryFieldPosition, fields[0])
}

func TestMoveIssueSameColumnUp(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.db.expectTx()

	err := env.svc.MoveIssue(context.Background(), env.a2.ID, env.colA.ID, env.colA.ID, 0, env.actor())
	require.NoError(t, err)

	moved, _ := env.issues.GetByID(context.Background(), env.a2.ID)
	assert.Equal(t, 0, moved.Position)

	shifted0, _ := env.issues.GetByID(context.Background(), env.a0.ID)
	shifted1, _ := env.issues.GetByID(context.Background(), env.a1.ID)
	assert.Equal(t, 1, shifted0.Position, "intermediate issues step down one rank")
	assert.Equal(t, 2, shifted1.Position)
	assertDense(t, env.issues, env.colA.ID)
}

func TestMoveIssueSameColumnIdempotent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.db.expectTx()

	err := env.svc.MoveIssue(context.Background(), env.a1.ID, env.colA.ID, env.colA.ID, 1, env.actor())
	require.NoError(t, err)

	// No-op: nothing shifts, no audit entry, no broadcast, no cache churn.
	unchanged, _ := env.issues.GetByID(context.Background(), env.a1.ID)
	assert.Equal(t, 1, unchanged.Position)
	assert.Empty(t, env.history.fieldsFor(env.a1.ID))
	assert.Empty(t, env.broadcaster.snapshots)
	assert.Empty(t, env.cache.keys)
}

func TestMoveIssueSameColumnClampsPastEnd(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.db.expectTx()

	// Position 99 clamps to the last rank.
	err := env.svc.MoveIssue(context.Background(), env.a0.ID, env.colA.ID, env.colA.ID, 99, env.actor())
	require.NoError(t, err)

	moved, _ := env.issues.GetByID(context.Background(), env.a0.ID)
	assert.Equal(t, 2, moved.Position)
	assertDense(t, env.issues, env.colA.ID)
}

func TestMoveIssueCrossColumn(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.db.expectTx()
	actor := env.actor()

	err := env.svc.MoveIssue(context.Background(), env.a1.ID, env.colA.ID, env.colB.ID, 0, actor)
	require.NoError(t, err)

	moved, _ := env.issues.GetByID(context.Background(), env.a1.ID)
	assert.Equal(t, env.colB.ID, moved.ColumnID)
	assert.Equal(t, 0, moved.Position)
	assert.Equal(t, "Done", moved.Status, "status tracks the destination column")
	assert.Equal(t, "complete", moved.Category)

	// Source column compacted behind the departed issue.
	assertDense(t, env.issues, env.colA.ID)
	assertDense(t, env.issues, env.colB.ID)

	// Column change plus status change, in that order.
	fields := env.history.fieldsFor(env.a1.ID)
	require.Len(t, fields, 2)
	assert.Equal(t, domain.HistoryFieldColumn, fields[0])
	assert.Equal(t, domain.HistoryFieldStatus, fields[1])

	// Both columns' cache entries dropped.
	assert.Contains(t, env.cache.keys, columnIssuesKey(env.colA.ID))
	assert.Contains(t, env.cache.keys, columnIssuesKey(env.colB.ID))

	require.Len(t, env.broadcaster.snapshots, 1)
	assert.Equal(t, BoardActionMove, env.broadcaster.snapshots[0].Action)
}

func TestMoveIssueCrossColumnClampsToTail(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.db.expectTx()
	require.NoError(t, env.svc.MoveIssue(context.Background(), env.a0.ID, env.colA.ID, env.colB.ID, 50, env.actor()))

	moved, _ := env.issues.GetByID(context.Background(), env.a0.ID)
	assert.Equal(t, 0, moved.Position, "empty destination clamps to position 0")

	env.db.expectTx()
	require.NoError(t, env.svc.MoveIssue(context.Background(), env.a1.ID, env.colA.ID, env.colB.ID, 50, env.actor()))

	moved, _ = env.issues.GetByID(context.Background(), env.a1.ID)
	assert.Equal(t, 1, moved.Position, "over-large target clamps to the tail")
	assertDense(t, env.issues, env.colB.ID)
}

func TestMoveIssueWIPLimitBlocksEntry(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	limit := 1
	env.colB.Limit = &limit
	env.columns.columns[env.colB.ID] = env.colB

	// Fill column B to its limit.
	env.seedIssue(t, env.colB.ID, 0)

	env.db.expectRollback()
	err := env.svc.MoveIssue(context.Background(), env.a0.ID, env.colA.ID, env.colB.ID, 0, env.actor())
	assert.ErrorIs(t, err, ErrColumnFull)

	// Nothing moved, nothing leaked out.
	unchanged, _ := env.issues.GetByID(context.Background(), env.a0.ID)
	assert.Equal(t, env.colA.ID, unchanged.ColumnID)
	assert.Empty(t, env.broadcaster.snapshots)
	assert.Empty(t, env.cache.keys)
}

func TestMoveIssueWIPLimitAllowsReorderInsideFullColumn(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	// Column A is over its limit, but reordering within it never blocks.
	limit := 2
	env.colA.Limit = &limit
	env.columns.columns[env.colA.ID] = env.colA

	env.db.expectTx()
	err := env.svc.MoveIssue(context.Background(), env.a0.ID, env.colA.ID, env.colA.ID, 2, env.actor())
	assert.NoError(t, err)
	assertDense(t, env.issues, env.colA.ID)
}

func TestMoveIssueRejectsCrossProjectDestination(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	// A column whose board belongs to another project.
	foreignBoard := &domain.Board{ID: uuid.New(), TenantID: env.tenantID, ProjectID: uuid.New(), Name: "Other"}
	foreignCol := &domain.Column{ID: uuid.New(), BoardID: foreignBoard.ID, Name: "Elsewhere"}
	env.boards.boards[foreignBoard.ID] = foreignBoard
	env.columns.columns[foreignCol.ID] = foreignCol

	env.db.expectRollback()
	err := env.svc.MoveIssue(context.Background(), env.a0.ID, env.colA.ID, foreignCol.ID, 0, env.actor())
	assert.ErrorIs(t, err, ErrProjectMismatch)
}

func TestMoveIssueUnknownIssue(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.db.expectRollback()

	err := env.svc.MoveIssue(context.Background(), uuid.New(), env.colA.ID, env.colB.ID, 0, env.actor())
	assert.ErrorIs(t, err, store.ErrIssueNotFound)
}

func TestDeleteIssueCompactsColumn(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.db.expectTx()

	err := env.svc.DeleteIssue(context.Background(), env.a1.ID, env.actor())
	require.NoError(t, err)

	_, err = env.issues.GetByID(context.Background(), env.a1.ID)
	assert.ErrorIs(t, err, store.ErrIssueNotFound)

	// Trailing issue stepped down to close the gap.
	trailing, _ := env.issues.GetByID(context.Background(), env.a2.ID)
	assert.Equal(t, 1, trailing.Position)
	assertDense(t, env.issues, env.colA.ID)

	fields := env.history.fieldsFor(env.a1.ID)
	require.Len(t, fields, 1)
	assert.Equal(t, domain.HistoryFieldDeleted, fields[0])

	require.Len(t, env.broadcaster.snapshots, 1)
	assert.Equal(t, BoardActionDelete, env.broadcaster.snapshots[0].Action)
}

func TestDeleteIssueWithSubIssuesRejected(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	child := env.seedIssue(t, env.colA.ID, 3)
	child.ParentIssueID = &env.a0.ID
	require.NoError(t, env.issues.Update(context.Background(), child))

	env.db.expectRollback()
	err := env.svc.DeleteIssue(context.Background(), env.a0.ID, env.actor())
	assert.ErrorIs(t, err, ErrHasSubIssues)

	// Parent survives untouched.
	parent, getErr := env.issues.GetByID(context.Background(), env.a0.ID)
	require.NoError(t, getErr)
	assert.Equal(t, 0, parent.Position)
}

func TestGetIssue(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	issue, err := env.svc.GetIssue(context.Background(), env.a0.ID)
	require.NoError(t, err)
	assert.Equal(t, env.a0.ID, issue.ID)

	_, err = env.svc.GetIssue(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrIssueNotFound)
}

func TestListProjectIssuesOrdering(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	// One issue in column B so both columns contribute.
	b0 := env.seedIssue(t, env.colB.ID, 0)

	issues, err := env.svc.ListProjectIssues(context.Background(), env.projectID)
	require.NoError(t, err)
	require.Len(t, issues, 4)

	// Column-major: all of column A in rank order, then column B.
	assert.Equal(t, env.a0.ID, issues[0].ID)
	assert.Equal(t, env.a1.ID, issues[1].ID)
	assert.Equal(t, env.a2.ID, issues[2].ID)
	assert.Equal(t, b0.ID, issues[3].ID)
}

func TestCacheFailureDoesNotFailMutation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.cache.err = assert.AnError
	env.db.expectTx()

	_, err := env.svc.CreateIssue(context.Background(), CreateIssueRequest{
		ColumnID: env.colA.ID,
		Title:    "Cache is down",
	}, env.actor())

	assert.NoError(t, err, "invalidation failures are logged, never surfaced")
}
