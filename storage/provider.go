package storage

import (
	"context"

	"github.com/kubex/rclink/roster"
)

type Provider interface {
	roster.Store

	CreateMember(ctx context.Context, member roster.Member) (int64, error)
	GetMember(ctx context.Context, memberID int64) (*roster.Member, error)
	ListMembers(ctx context.Context) ([]roster.Member, error)

	Initialize() error
	Connect() error
	Close() error
}
