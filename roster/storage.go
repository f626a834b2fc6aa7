package roster

import "context"

// Store is the roster persistence the linker depends on.
//
// ClaimMember must perform its update in a single statement guarded by
// line_user_id IS NULL and report the number of rows it changed.
type Store interface {
	FindByNameKey(ctx context.Context, nameKey string, limit int) ([]Candidate, error)
	FindByDisplayName(ctx context.Context, displayName string, limit int) ([]Candidate, error)
	ClaimMember(ctx context.Context, memberID int64, lineUserID, displayName string, setTarget bool) (int64, error)
	RefreshDisplayName(ctx context.Context, memberID int64, lineUserID, displayName string) (int64, error)

	FindByLineUserID(ctx context.Context, lineUserID string) (*Member, error)
	ReleaseLineUser(ctx context.Context, lineUserID string) (int64, error)
}
