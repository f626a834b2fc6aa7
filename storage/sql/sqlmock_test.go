package sql

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/kubex/rclink/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockProvider(t *testing.T) (*Provider, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return FromDB(db, false), mock
}

func TestLinkPropagatesLookupFailure(t *testing.T) {
	p, mock := newMockProvider(t)
	connErr := errors.New("connection refused")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, line_user_id FROM members WHERE name_key = ?")).
		WithArgs("花木英雄", 2).
		WillReturnError(connErr)

	out := roster.NewLinker(p, roster.Normalizer{}).Link(context.Background(), "U1", "花木 英雄", roster.ModeSilent)
	assert.Equal(t, roster.OutcomeError, out.Type)
	assert.Equal(t, "花木英雄", out.NameKey)
	assert.Equal(t, connErr.Error(), out.Reason)
	assert.ErrorIs(t, out.Err, connErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkLostRaceAtStatementLevel(t *testing.T) {
	p, mock := newMockProvider(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, line_user_id FROM members WHERE name_key = ?")).
		WithArgs("田中太郎", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "line_user_id"}).AddRow(3, nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE members SET line_user_id = ?, line_display_name = ?, updated_at = CURRENT_TIMESTAMP, is_target = 1 WHERE id = ? AND line_user_id IS NULL")).
		WithArgs("UbbBB", "田中太郎", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	out := roster.NewLinker(p, roster.Normalizer{}).Link(context.Background(), "UbbBB", "田中太郎", roster.ModeSilent)
	assert.Equal(t, roster.OutcomeAlreadyLinkedOther, out.Type)
	assert.Equal(t, roster.ReasonConcurrentUpdate, out.Reason)
	assert.Equal(t, int64(3), out.MemberID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExactModeDoesNotTouchTarget(t *testing.T) {
	p, mock := newMockProvider(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, line_user_id FROM members WHERE name_key = ?")).
		WithArgs("johnsmith", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "line_user_id"}).AddRow(7, nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE members SET line_user_id = ?, line_display_name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND line_user_id IS NULL")).
		WithArgs("U7", "Johnny", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	out := roster.NewLinker(p, roster.Normalizer{}).Link(context.Background(), "U7", "John Smith", roster.ModeExact, roster.WithDisplayName("Johnny"))
	assert.Equal(t, roster.OutcomeLinked, out.Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDuplicateEntry(t *testing.T) {
	p, mock := newMockProvider(t)

	mock.ExpectExec("UPDATE members SET").
		WillReturnError(&mysql.MySQLError{Number: mySQLDuplicateEntry, Message: "Duplicate entry 'U1' for key 'members_line_user_id'"})

	_, err := p.ClaimMember(context.Background(), 1, "U1", "x", true)
	assert.ErrorIs(t, err, roster.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDuplicateConflict(t *testing.T) {
	p := &Provider{}
	assert.False(t, p.isDuplicateConflict(nil))
	assert.False(t, p.isDuplicateConflict(errors.New("database is locked")))
	assert.True(t, p.isDuplicateConflict(errors.New("constraint failed: UNIQUE constraint failed: members.line_user_id (2067)")))
	assert.True(t, p.isDuplicateConflict(&mysql.MySQLError{Number: mySQLDuplicateEntry}))
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "/tmp/a.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", sqliteDSN("/tmp/a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", sqliteDSN("file:a.db?mode=rwc"))
	assert.Equal(t, "a.db?_pragma=busy_timeout(100)", sqliteDSN("a.db?_pragma=busy_timeout(100)"))
}
