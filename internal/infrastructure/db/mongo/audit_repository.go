package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskforge/taskforge-api/internal/core/domain"
)

const auditCollection = "auth_audit"

// AuditRepository stores the authentication audit trail. Writes happen off the
// request path via the dispatcher, so Insert simply reports failures upward
// for logging.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAuditEvent struct {
	Type       string `bson:"type"`
	IdentityID string `bson:"identity_id,omitempty"`
	Username   string `bson:"username"`
	Reason     string `bson:"reason,omitempty"`
	At         int64  `bson:"at"`
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuthEvent) error {
	doc := mongoAuditEvent{
		Type:       string(event.Type),
		IdentityID: event.IdentityID,
		Username:   event.Username,
		Reason:     event.Reason,
		At:         event.At.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
