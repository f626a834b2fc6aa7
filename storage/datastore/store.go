package datastore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/kubex/rclink/roster"
)

func (p *Provider) CreateMember(ctx context.Context, member roster.Member) (int64, error) {
	if p.client == nil {
		return 0, ErrNotConnected
	}

	keys, err := p.client.AllocateIDs(ctx, []*datastore.Key{datastore.IncompleteKey(kindMember, nil)})
	if err != nil {
		return 0, err
	}
	key := keys[0]

	now := time.Now().UTC()
	entity := fromMember(member)
	entity.CreatedAt = now
	entity.UpdatedAt = now

	_, err = p.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		if entity.LineUserID != "" {
			if err := tx.Get(lineUserKey(entity.LineUserID), &lineUserStore{}); err == nil {
				return fmt.Errorf("create member %q: %w", member.Name, roster.ErrDuplicate)
			} else if !errors.Is(err, datastore.ErrNoSuchEntity) {
				return err
			}
			if _, err := tx.Put(lineUserKey(entity.LineUserID), &lineUserStore{MemberID: key.ID}); err != nil {
				return err
			}
		}
		_, err := tx.Put(key, entity)
		return err
	})
	if err != nil {
		return 0, err
	}
	return key.ID, nil
}

func (p *Provider) GetMember(ctx context.Context, memberID int64) (*roster.Member, error) {
	if p.client == nil {
		return nil, ErrNotConnected
	}
	entity := &memberStore{}
	if err := p.client.Get(ctx, memberKey(memberID), entity); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, roster.ErrNoResultFound
		}
		return nil, err
	}
	m := entity.toMember(memberID)
	return &m, nil
}

func (p *Provider) ListMembers(ctx context.Context) ([]roster.Member, error) {
	if p.client == nil {
		return nil, ErrNotConnected
	}
	var entities []memberStore
	keys, err := p.client.GetAll(ctx, datastore.NewQuery(kindMember).Order("__key__"), &entities)
	if err != nil {
		return nil, err
	}
	members := make([]roster.Member, 0, len(keys))
	for i, key := range keys {
		members = append(members, entities[i].toMember(key.ID))
	}
	return members, nil
}

func fromMember(m roster.Member) *memberStore {
	return &memberStore{
		Name:            m.Name,
		NameKey:         m.NameKey,
		LineUserID:      m.LineUserID,
		LineDisplayName: m.LineDisplayName,
		IsTarget:        m.IsTarget,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (s memberStore) toMember(id int64) roster.Member {
	return roster.Member{
		ID:              id,
		Name:            s.Name,
		NameKey:         s.NameKey,
		LineUserID:      s.LineUserID,
		LineDisplayName: s.LineDisplayName,
		IsTarget:        s.IsTarget,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
