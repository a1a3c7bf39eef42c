package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yoockh/portfolio/internal/models"
	mongorepo "github.com/yoockh/portfolio/internal/repositories/mongo"
	"github.com/yoockh/portfolio/internal/utils"
)

// parseID treats a malformed id like an unknown one.
func parseID(op, id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, utils.E(utils.CodeNotFound, op, what+" not found", err)
	}
	return oid, nil
}

// ownerRef loads the identity joined into single-record responses. A lookup
// failure leaves the reference empty rather than failing the request.
func ownerRef(ctx context.Context, users mongorepo.UserRepository, id primitive.ObjectID, withEmail bool) *models.UserRef {
	if users == nil {
		return nil
	}
	u, err := users.GetByID(ctx, id)
	if err != nil {
		return nil
	}
	ref := &models.UserRef{ID: u.ID, Name: u.Name}
	if withEmail {
		ref.Email = u.Email
	}
	return ref
}
