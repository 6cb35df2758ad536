package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rolegate/rolegate/internal/core/domain"
	"github.com/rolegate/rolegate/internal/core/ports"
)

const identityCollection = "identities"

// CredentialStore persists identities in MongoDB. Email uniqueness is
// enforced by a unique index, so concurrent registrations cannot race.
type CredentialStore struct {
	coll *mongo.Collection
}

func NewCredentialStore(db *mongo.Database) *CredentialStore {
	return &CredentialStore{coll: db.Collection(identityCollection)}
}

type identityDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"created_at"`
}

// EnsureIndexes creates the unique email index. Safe to call on every start.
func (s *CredentialStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (s *CredentialStore) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	doc := toDoc(identity)
	doc.ID = primitive.NewObjectID()

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *CredentialStore) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrIdentityNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *CredentialStore) findOne(ctx context.Context, filter bson.M) (*domain.Identity, error) {
	var doc identityDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return doc.toDomain(), nil
}

func toDoc(i *domain.Identity) identityDoc {
	role := i.Role
	if !role.Valid() {
		role = domain.RoleGuest
	}
	return identityDoc{
		Name:         i.Name,
		Email:        i.Email,
		PasswordHash: i.PasswordHash,
		Role:         string(role),
		CreatedAt:    i.CreatedAt.UTC(),
	}
}

func (d identityDoc) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.RoleOrGuest(d.Role),
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

var _ ports.CredentialStore = (*CredentialStore)(nil)
