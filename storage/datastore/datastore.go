package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"cloud.google.com/go/datastore"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
)

const ProviderKey = "datastore"

const (
	kindMember   = "RcMember"
	kindLineUser = "RcLineUser"
)

var ErrNotConnected = errors.New("datastore: not connected")

type Provider struct {
	client    dataStoreClient
	ProjectID string `json:"projectId"`
}

// FromJson only reads configuration; the client is created by Connect.
func FromJson(data []byte) (*Provider, error) {
	p := &Provider{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) Connect() error {
	if p.client != nil {
		return nil
	}
	client, err := datastore.NewClient(context.Background(), p.ProjectID,
		option.WithGRPCDialOption(grpc.WithReturnConnectionError()),
		option.WithGRPCDialOption(grpc.WithTimeout(time.Second*5)),
		option.WithGRPCDialOption(grpc.WithDisableRetry()))
	if err != nil {
		return err
	}
	p.client = client
	return nil
}

// Initialize has nothing to migrate; Datastore is schemaless.
func (p *Provider) Initialize() error {
	return p.Connect()
}

func (p *Provider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// memberStore is the persisted shape of a roster member.
type memberStore struct {
	Name            string
	NameKey         string
	LineUserID      string
	LineDisplayName string
	IsTarget        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// lineUserStore reserves a LINE user id for exactly one member. Its key name
// is the LINE user id, which makes the reservation unique.
type lineUserStore struct {
	MemberID int64
}

func memberKey(id int64) *datastore.Key {
	return datastore.IDKey(kindMember, id, nil)
}

func lineUserKey(lineUserID string) *datastore.Key {
	return datastore.NameKey(kindLineUser, lineUserID, nil)
}

type dataStoreClient interface {
	io.Closer
	Get(ctx context.Context, key *datastore.Key, dst interface{}) (err error)
	Put(ctx context.Context, key *datastore.Key, src interface{}) (*datastore.Key, error)
	GetAll(ctx context.Context, q *datastore.Query, dst interface{}) (keys []*datastore.Key, err error)
	AllocateIDs(ctx context.Context, keys []*datastore.Key) ([]*datastore.Key, error)
	RunInTransaction(ctx context.Context, f func(tx *datastore.Transaction) error, opts ...datastore.TransactionOption) (*datastore.Commit, error)
}
