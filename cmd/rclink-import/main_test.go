package main

import (
	"context"
	"errors"
	"testing"

	"github.com/kubex/rclink/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	members []roster.Member
	failOn  string
}

func (m *memStore) CreateMember(_ context.Context, member roster.Member) (int64, error) {
	if member.Name == m.failOn {
		return 0, errors.New("disk I/O error")
	}
	for _, existing := range m.members {
		if member.LineUserID != "" && existing.LineUserID == member.LineUserID {
			return 0, roster.ErrDuplicate
		}
	}
	member.ID = int64(len(m.members) + 1)
	m.members = append(m.members, member)
	return member.ID, nil
}

func (m *memStore) ListMembers(context.Context) ([]roster.Member, error) {
	return m.members, nil
}

func TestImportMembers(t *testing.T) {
	store := &memStore{members: []roster.Member{{ID: 1, Name: "山田 太郎", NameKey: "山田太郎"}}}
	in := []roster.Member{
		{Name: "山田 太郎", NameKey: "山田太郎"},
		{Name: "佐藤 花子", NameKey: "佐藤花子", LineUserID: "Uabc123"},
		{Name: "鈴木 一郎", NameKey: "鈴木一郎", LineUserID: "Uabc123"},
		{Name: "佐藤 花子", NameKey: "佐藤花子"},
	}

	created, skipped, err := importMembers(context.Background(), store, in)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, 3, skipped)
	assert.Len(t, store.members, 2)
}

func TestImportMembersStopsOnError(t *testing.T) {
	store := &memStore{failOn: "鈴木 一郎"}
	in := []roster.Member{
		{Name: "佐藤 花子", NameKey: "佐藤花子"},
		{Name: "鈴木 一郎", NameKey: "鈴木一郎"},
	}

	created, _, err := importMembers(context.Background(), store, in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "鈴木 一郎")
	assert.Equal(t, 1, created)
}
