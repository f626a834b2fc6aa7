package roster

import (
	"context"
	"errors"
	"strings"
)

// candidateLimit is enough to tell one match from several.
const candidateLimit = 2

const ReasonUserLinkedElsewhere = "line user already linked to another member"

// Linker associates LINE users with roster members. It holds no state between
// calls; the guarded claim in Store is the only concurrency control.
type Linker struct {
	store      Store
	normalizer Normalizer
}

func NewLinker(store Store, normalizer Normalizer) *Linker {
	return &Linker{store: store, normalizer: normalizer}
}

// Link resolves observedName to exactly one member and claims it for userID.
// Storage failures come back as OutcomeError; nothing is retried here.
func (l *Linker) Link(ctx context.Context, userID, observedName string, mode Mode, opts ...LinkOption) LinkOutcome {
	if strings.TrimSpace(userID) == "" {
		return LinkOutcome{Type: OutcomeError, Reason: ReasonMissingUserID}
	}

	key := l.normalizer.Normalize(observedName)
	if key == "" {
		return LinkOutcome{Type: OutcomeUnmatched, Reason: ReasonEmptyName}
	}

	payload := &LinkPayload{DisplayName: observedName}
	for _, opt := range opts {
		opt(payload)
	}

	rows, err := l.store.FindByNameKey(ctx, key, candidateLimit)
	if err != nil {
		return errorOutcome(key, err)
	}

	if len(rows) == 0 {
		if !mode.fallback() {
			return LinkOutcome{Type: OutcomeUnmatched, NameKey: key, Reason: ReasonNoMatch}
		}
		rows, err = l.store.FindByDisplayName(ctx, observedName, candidateLimit)
		if err != nil {
			return errorOutcome(key, err)
		}
		if len(rows) == 0 {
			return LinkOutcome{Type: OutcomeUnmatched, NameKey: key, Reason: ReasonNoMatchFallback}
		}
	}

	if len(rows) > 1 {
		return LinkOutcome{Type: OutcomeAmbiguous, NameKey: key, Reason: ReasonMultipleMatches}
	}

	return l.apply(ctx, rows[0], key, userID, payload.DisplayName, mode)
}

func (l *Linker) apply(ctx context.Context, member Candidate, key, userID, displayName string, mode Mode) LinkOutcome {
	result := LinkOutcome{NameKey: key, MemberID: member.ID}

	switch member.LineUserID {
	case "":
		changed, err := l.store.ClaimMember(ctx, member.ID, userID, displayName, mode.setsTarget())
		if errors.Is(err, ErrDuplicate) {
			result.Type = OutcomeAlreadyLinkedOther
			result.Reason = ReasonUserLinkedElsewhere
			return result
		}
		if err != nil {
			return errorOutcome(key, err)
		}
		if changed == 1 {
			result.Type = OutcomeLinked
			return result
		}
		result.Type = OutcomeAlreadyLinkedOther
		result.Reason = ReasonConcurrentUpdate
		return result

	case userID:
		if _, err := l.store.RefreshDisplayName(ctx, member.ID, userID, displayName); err != nil {
			return errorOutcome(key, err)
		}
		result.Type = OutcomeAlreadyLinkedSame
		return result

	default:
		result.Type = OutcomeAlreadyLinkedOther
		result.Reason = ReasonLinkedToOtherUser
		return result
	}
}

// Unlink releases whichever member holds userID and drops it from broadcasts.
func (l *Linker) Unlink(ctx context.Context, userID string) UnlinkOutcome {
	if strings.TrimSpace(userID) == "" {
		return UnlinkOutcome{Type: UnlinkError, Reason: ReasonMissingUserID}
	}

	member, err := l.store.FindByLineUserID(ctx, userID)
	if errors.Is(err, ErrNoResultFound) || (err == nil && member == nil) {
		return UnlinkOutcome{Type: UnlinkNotFound, Reason: "no linked member found"}
	}
	if err != nil {
		return UnlinkOutcome{Type: UnlinkError, Reason: err.Error(), Err: err}
	}

	if _, err := l.store.ReleaseLineUser(ctx, userID); err != nil {
		return UnlinkOutcome{Type: UnlinkError, MemberID: member.ID, Reason: err.Error(), Err: err}
	}
	return UnlinkOutcome{Type: Unlinked, MemberID: member.ID, MemberName: member.Name}
}

func errorOutcome(key string, err error) LinkOutcome {
	return LinkOutcome{Type: OutcomeError, NameKey: key, Reason: err.Error(), Err: err}
}
