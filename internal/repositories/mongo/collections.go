package mongo

import (
	"errors"

	"github.com/yoockh/portfolio/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	UsersCollection    = "users"
	CommentsCollection = "comments"
	CVsCollection      = "cvs"
	ContactsCollection = "contacts"
)

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

// ownerStages joins the owning user into "owner", keeping only public
// identity fields. Requires MongoDB 5.0+ (localField combined with pipeline).
func ownerStages(withEmail bool) mongo.Pipeline {
	fields := bson.D{{Key: "name", Value: 1}}
	if withEmail {
		fields = append(fields, bson.E{Key: "email", Value: 1})
	}

	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: bson.A{bson.D{{Key: "$project", Value: fields}}}},
			{Key: "as", Value: "owner"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$owner"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return utils.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return utils.ErrDuplicate
	default:
		return err
	}
}
