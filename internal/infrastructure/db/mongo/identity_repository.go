package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskforge/taskforge-api/internal/core/domain"
	"github.com/taskforge/taskforge-api/internal/core/ports"
)

const identityCollection = "identities"

// IdentityRepository persists identities in MongoDB. Unique indexes on
// username and email make Create an atomic insert-if-absent: concurrent
// registrations of the same username race at the index, and exactly one wins.
type IdentityRepository struct {
	coll *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{coll: db.Collection(identityCollection)}
}

// EnsureIndexes creates the unique indexes the repository's atomicity depends
// on. Call once at startup, before serving traffic.
func (r *IdentityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create identity indexes: %w", err)
	}
	return nil
}

type mongoIdentity struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	Name         string             `bson:"name"`
	Surname      string             `bson:"surname"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	IsActive     bool               `bson:"is_active"`
	LastLoginAt  int64              `bson:"last_login_at,omitempty"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	doc := mongoIdentity{
		Username:     identity.Username,
		Email:        identity.Email,
		Name:         identity.Name,
		Surname:      identity.Surname,
		PasswordHash: identity.PasswordHash,
		Role:         identity.Role.String(),
		IsActive:     identity.IsActive,
		CreatedAt:    identity.CreatedAt.Unix(),
		UpdatedAt:    identity.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.NewDuplicateError("username or email already taken")
		}
		return nil, domain.NewInternalError(fmt.Errorf("insert identity: %w", err))
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, domain.NewInternalError(fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}
	created := *identity
	created.ID = oid.Hex()
	return &created, nil
}

func (r *IdentityRepository) FindByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *IdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.NewNotFoundError("identity not found")
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *IdentityRepository) List(ctx context.Context) ([]domain.Identity, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("list identities: %w", err))
	}
	defer cursor.Close(ctx)

	var identities []domain.Identity
	for cursor.Next(ctx) {
		var mi mongoIdentity
		if err := cursor.Decode(&mi); err != nil {
			return nil, domain.NewInternalError(fmt.Errorf("decode identity: %w", err))
		}
		identities = append(identities, *mi.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("list identities: %w", err))
	}
	return identities, nil
}

func (r *IdentityRepository) Update(ctx context.Context, id string, update ports.IdentityUpdate) (*domain.Identity, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.NewNotFoundError("identity not found")
	}

	set := bson.M{"updated_at": time.Now().UTC().Unix()}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Role != nil {
		set["role"] = update.Role.String()
	}
	if update.IsActive != nil {
		set["is_active"] = *update.IsActive
	}
	if update.PasswordHash != nil {
		set["password_hash"] = *update.PasswordHash
	}

	var mi mongoIdentity
	err = r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mi)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.NewNotFoundError("identity not found")
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.NewDuplicateError("email already taken")
		}
		return nil, domain.NewInternalError(fmt.Errorf("update identity: %w", err))
	}
	return mi.toDomain(), nil
}

// RecordLogin advances last_login_at with $max, so a slow concurrent writer
// can never move the timestamp backwards.
func (r *IdentityRepository) RecordLogin(ctx context.Context, id string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.NewNotFoundError("identity not found")
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{
		"$max": bson.M{"last_login_at": at.Unix()},
	})
	if err != nil {
		return domain.NewInternalError(fmt.Errorf("record login: %w", err))
	}
	if res.MatchedCount == 0 {
		return domain.NewNotFoundError("identity not found")
	}
	return nil
}

func (r *IdentityRepository) findOne(ctx context.Context, filter bson.M) (*domain.Identity, error) {
	var mi mongoIdentity
	if err := r.coll.FindOne(ctx, filter).Decode(&mi); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.NewNotFoundError("identity not found")
		}
		return nil, domain.NewInternalError(fmt.Errorf("find identity: %w", err))
	}
	return mi.toDomain(), nil
}

func (mi *mongoIdentity) toDomain() *domain.Identity {
	identity := &domain.Identity{
		ID:           mi.ID.Hex(),
		Username:     mi.Username,
		Email:        mi.Email,
		Name:         mi.Name,
		Surname:      mi.Surname,
		PasswordHash: mi.PasswordHash,
		Role:         domain.Role(mi.Role),
		IsActive:     mi.IsActive,
		CreatedAt:    unixToTime(mi.CreatedAt),
		UpdatedAt:    unixToTime(mi.UpdatedAt),
	}
	if mi.LastLoginAt != 0 {
		t := unixToTime(mi.LastLoginAt)
		identity.LastLoginAt = &t
	}
	return identity
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
