package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/seckernel/kernel-api/internal/core/domain"
)

const (
	securityCollection = "_resource_security"

	// codeNamespaceExists is returned by create when the collection is taken.
	codeNamespaceExists = 48
)

// ResourceStore maps each per-user resource to a collection. MongoDB has no
// per-collection security document, so descriptors are only recorded in
// securityCollection keyed by resource name. Nothing here restricts access to
// the collections themselves: any account with readWrite on the database can
// reach every user's data.
type ResourceStore struct {
	db       *mongo.Database
	security *mongo.Collection
}

func NewResourceStore(db *mongo.Database) *ResourceStore {
	return &ResourceStore{db: db, security: db.Collection(securityCollection)}
}

type securityDoc struct {
	Resource  string            `bson:"_id"`
	Admins    domain.Principals `bson:"admins"`
	Members   domain.Principals `bson:"members"`
	UpdatedAt int64             `bson:"updated_at"`
}

func (s *ResourceStore) Exists(ctx context.Context, name string) (bool, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, fmt.Errorf("mongo list collections: %w", err)
	}
	return len(names) > 0, nil
}

func (s *ResourceStore) Create(ctx context.Context, name string) error {
	err := s.db.CreateCollection(ctx, name)
	if err == nil {
		return nil
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceExists {
		return domain.ErrResourceExists
	}
	return fmt.Errorf("mongo create collection %s: %w", name, err)
}

func (s *ResourceStore) SetSecurity(ctx context.Context, name string, sec domain.SecurityDescriptor) error {
	doc := securityDoc{
		Resource:  name,
		Admins:    sec.Admins,
		Members:   sec.Members,
		UpdatedAt: time.Now().Unix(),
	}
	_, err := s.security.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo security %s: %w", name, err)
	}
	return nil
}

// Security returns the recorded descriptor for name.
func (s *ResourceStore) Security(ctx context.Context, name string) (*domain.SecurityDescriptor, error) {
	var doc securityDoc
	if err := s.security.FindOne(ctx, bson.M{"_id": name}).Decode(&doc); err != nil {
		return nil, fmt.Errorf("mongo security %s: %w", name, err)
	}
	return &domain.SecurityDescriptor{Admins: doc.Admins, Members: doc.Members}, nil
}

func (s *ResourceStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}
