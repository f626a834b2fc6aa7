package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/kubex/rclink/roster"
)

const (
	mySQLDuplicateEntry   = 1062
	sqlLiteDuplicateEntry = 1555
)

const memberColumns = "id, name, name_key, line_user_id, line_display_name, is_target, created_at, updated_at"

func (p *Provider) isDuplicateConflict(err error) bool {
	var me1 *mysql.MySQLError
	if errors.As(err, &me1) && (me1.Number == mySQLDuplicateEntry || me1.Number == sqlLiteDuplicateEntry) {
		return true
	}
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}
	return false
}

func (p *Provider) FindByNameKey(ctx context.Context, nameKey string, limit int) ([]roster.Candidate, error) {
	return p.candidates(ctx, "name_key", nameKey, limit)
}

func (p *Provider) FindByDisplayName(ctx context.Context, displayName string, limit int) ([]roster.Candidate, error) {
	return p.candidates(ctx, "line_display_name", displayName, limit)
}

func (p *Provider) candidates(ctx context.Context, field, match string, limit int) ([]roster.Candidate, error) {
	rows, err := p.primaryConnection.QueryContext(ctx, "SELECT id, line_user_id FROM members WHERE "+field+" = ? ORDER BY id LIMIT ?", match, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var located []roster.Candidate
	for rows.Next() {
		var c roster.Candidate
		lineUserID := sql.NullString{}
		if err := rows.Scan(&c.ID, &lineUserID); err != nil {
			return nil, err
		}
		c.LineUserID = lineUserID.String
		located = append(located, c)
	}
	return located, rows.Err()
}

// ClaimMember links an unlinked member. The IS NULL guard lives in the same
// statement as the write, so of two racing claims only one changes a row.
func (p *Provider) ClaimMember(ctx context.Context, memberID int64, lineUserID, displayName string, setTarget bool) (int64, error) {
	set := "line_user_id = ?, line_display_name = ?, updated_at = CURRENT_TIMESTAMP"
	if setTarget {
		set += ", is_target = 1"
	}

	res, err := p.primaryConnection.ExecContext(ctx, "UPDATE members SET "+set+" WHERE id = ? AND line_user_id IS NULL", lineUserID, displayName, memberID)
	if p.isDuplicateConflict(err) {
		return 0, fmt.Errorf("claim member %d: %w", memberID, roster.ErrDuplicate)
	}
	if err != nil {
		return 0, err
	}

	changed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		p.update()
	}
	return changed, nil
}

// RefreshDisplayName only writes when the name actually changed, so repeating
// a link leaves the row untouched.
func (p *Provider) RefreshDisplayName(ctx context.Context, memberID int64, lineUserID, displayName string) (int64, error) {
	res, err := p.primaryConnection.ExecContext(ctx,
		"UPDATE members SET line_display_name = ?, updated_at = CURRENT_TIMESTAMP "+
			"WHERE id = ? AND line_user_id = ? AND (line_display_name IS NULL OR line_display_name <> ?)",
		displayName, memberID, lineUserID, displayName)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (p *Provider) FindByLineUserID(ctx context.Context, lineUserID string) (*roster.Member, error) {
	return p.memberBy(ctx, "line_user_id", lineUserID)
}

func (p *Provider) ReleaseLineUser(ctx context.Context, lineUserID string) (int64, error) {
	res, err := p.primaryConnection.ExecContext(ctx, "UPDATE members SET line_user_id = NULL, is_target = 0, updated_at = CURRENT_TIMESTAMP WHERE line_user_id = ?", lineUserID)
	if err != nil {
		return 0, err
	}
	changed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		p.update()
	}
	return changed, nil
}

// CreateMember inserts a roster row. A line_user_id already held by another
// row is reported as roster.ErrDuplicate.
func (p *Provider) CreateMember(ctx context.Context, member roster.Member) (int64, error) {
	res, err := p.primaryConnection.ExecContext(ctx,
		"INSERT INTO members (name, name_key, line_user_id, line_display_name, is_target) VALUES (?, ?, ?, ?, ?)",
		member.Name, member.NameKey, nullString(member.LineUserID), nullString(member.LineDisplayName), member.IsTarget)
	if p.isDuplicateConflict(err) {
		return 0, fmt.Errorf("create member %q: %w", member.Name, roster.ErrDuplicate)
	}
	if err != nil {
		return 0, err
	}
	p.update()
	return res.LastInsertId()
}

func (p *Provider) GetMember(ctx context.Context, memberID int64) (*roster.Member, error) {
	return p.memberBy(ctx, "id", memberID)
}

func (p *Provider) ListMembers(ctx context.Context) ([]roster.Member, error) {
	rows, err := p.primaryConnection.QueryContext(ctx, "SELECT "+memberColumns+" FROM members ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []roster.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (p *Provider) memberBy(ctx context.Context, field string, match any) (*roster.Member, error) {
	row := p.primaryConnection.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM members WHERE "+field+" = ? LIMIT 1", match)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, roster.ErrNoResultFound
	}
	return m, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (*roster.Member, error) {
	m := &roster.Member{}
	lineUserID := sql.NullString{}
	displayName := sql.NullString{}
	createdAt := sql.NullString{}
	updatedAt := sql.NullString{}
	if err := row.Scan(&m.ID, &m.Name, &m.NameKey, &lineUserID, &displayName, &m.IsTarget, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	m.LineUserID = lineUserID.String
	m.LineDisplayName = displayName.String
	if createdAt.Valid {
		m.CreatedAt = timeFromString(createdAt.String)
	}
	if updatedAt.Valid {
		m.UpdatedAt = timeFromString(updatedAt.String)
	}
	return m, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
