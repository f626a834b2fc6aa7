package datastore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/kubex/rclink/roster"
)

func (p *Provider) FindByNameKey(ctx context.Context, nameKey string, limit int) ([]roster.Candidate, error) {
	return p.candidates(ctx, "NameKey", nameKey, limit)
}

func (p *Provider) FindByDisplayName(ctx context.Context, displayName string, limit int) ([]roster.Candidate, error) {
	return p.candidates(ctx, "LineDisplayName", displayName, limit)
}

func (p *Provider) candidates(ctx context.Context, field, match string, limit int) ([]roster.Candidate, error) {
	if p.client == nil {
		return nil, ErrNotConnected
	}
	q := datastore.NewQuery(kindMember).
		FilterField(field, "=", match).
		Limit(limit)

	var located []memberStore
	keys, err := p.client.GetAll(ctx, q, &located)
	if err != nil {
		return nil, err
	}

	candidates := make([]roster.Candidate, 0, len(keys))
	for i, key := range keys {
		candidates = append(candidates, roster.Candidate{ID: key.ID, LineUserID: located[i].LineUserID})
	}
	return candidates, nil
}

// ClaimMember reads and writes inside one transaction; a concurrent claim on
// the same member or LINE user aborts the commit, which reports as no change.
func (p *Provider) ClaimMember(ctx context.Context, memberID int64, lineUserID, displayName string, setTarget bool) (int64, error) {
	if p.client == nil {
		return 0, ErrNotConnected
	}

	var changed int64
	_, err := p.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		changed = 0

		reservation := &lineUserStore{}
		if err := tx.Get(lineUserKey(lineUserID), reservation); err == nil {
			return fmt.Errorf("claim member %d: %w", memberID, roster.ErrDuplicate)
		} else if !errors.Is(err, datastore.ErrNoSuchEntity) {
			return err
		}

		member := &memberStore{}
		if err := tx.Get(memberKey(memberID), member); err != nil {
			if errors.Is(err, datastore.ErrNoSuchEntity) {
				return nil
			}
			return err
		}
		if member.LineUserID != "" {
			return nil
		}

		member.LineUserID = lineUserID
		member.LineDisplayName = displayName
		member.UpdatedAt = time.Now().UTC()
		if setTarget {
			member.IsTarget = true
		}
		if _, err := tx.Put(memberKey(memberID), member); err != nil {
			return err
		}
		if _, err := tx.Put(lineUserKey(lineUserID), &lineUserStore{MemberID: memberID}); err != nil {
			return err
		}
		changed = 1
		return nil
	}, datastore.MaxAttempts(1))

	if errors.Is(err, datastore.ErrConcurrentTransaction) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return changed, nil
}

func (p *Provider) RefreshDisplayName(ctx context.Context, memberID int64, lineUserID, displayName string) (int64, error) {
	if p.client == nil {
		return 0, ErrNotConnected
	}

	var changed int64
	_, err := p.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		changed = 0
		member := &memberStore{}
		if err := tx.Get(memberKey(memberID), member); err != nil {
			return err
		}
		if member.LineUserID != lineUserID || member.LineDisplayName == displayName {
			return nil
		}
		member.LineDisplayName = displayName
		member.UpdatedAt = time.Now().UTC()
		if _, err := tx.Put(memberKey(memberID), member); err != nil {
			return err
		}
		changed = 1
		return nil
	})
	return changed, err
}

func (p *Provider) FindByLineUserID(ctx context.Context, lineUserID string) (*roster.Member, error) {
	if p.client == nil {
		return nil, ErrNotConnected
	}
	reservation := &lineUserStore{}
	if err := p.client.Get(ctx, lineUserKey(lineUserID), reservation); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, roster.ErrNoResultFound
		}
		return nil, err
	}
	return p.GetMember(ctx, reservation.MemberID)
}

func (p *Provider) ReleaseLineUser(ctx context.Context, lineUserID string) (int64, error) {
	if p.client == nil {
		return 0, ErrNotConnected
	}

	var changed int64
	_, err := p.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		changed = 0
		reservation := &lineUserStore{}
		if err := tx.Get(lineUserKey(lineUserID), reservation); err != nil {
			if errors.Is(err, datastore.ErrNoSuchEntity) {
				return nil
			}
			return err
		}
		if err := tx.Delete(lineUserKey(lineUserID)); err != nil {
			return err
		}

		member := &memberStore{}
		if err := tx.Get(memberKey(reservation.MemberID), member); err != nil {
			if errors.Is(err, datastore.ErrNoSuchEntity) {
				return nil
			}
			return err
		}
		if member.LineUserID != lineUserID {
			return nil
		}
		member.LineUserID = ""
		member.IsTarget = false
		member.UpdatedAt = time.Now().UTC()
		if _, err := tx.Put(memberKey(reservation.MemberID), member); err != nil {
			return err
		}
		changed = 1
		return nil
	})
	return changed, err
}
