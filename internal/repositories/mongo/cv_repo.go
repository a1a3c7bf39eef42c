package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/portfolio/internal/models"
	"github.com/yoockh/portfolio/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CVRepository interface {
	// Upsert stores cv as the only CV of cv.UserID and returns the record it
	// replaced, or nil when none existed. On return cv holds the stored id
	// and creation time.
	Upsert(ctx context.Context, cv *models.CV) (previous *models.CV, err error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.CV, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.CV, error)
	ListAll(ctx context.Context) ([]models.CV, error)
	SetApproval(ctx context.Context, id primitive.ObjectID, approved bool) (*models.CV, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type cvRepo struct {
	col *mongo.Collection
}

func NewCVRepo(db *mongo.Database) CVRepository {
	return &cvRepo{col: db.Collection(CVsCollection)}
}

func (r *cvRepo) Upsert(ctx context.Context, cv *models.CV) (*models.CV, error) {
	now := time.Now().UTC()
	newID := primitive.NewObjectID()

	update := bson.M{
		"$set": bson.M{
			"name":          cv.Name,
			"email":         cv.Email,
			"file_name":     cv.FileName,
			"original_name": cv.OriginalName,
			"file_path":     cv.FilePath,
			"file_size":     cv.FileSize,
			"mime_type":     cv.MimeType,
			"is_approved":   false,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{
			"_id":        newID,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	var prev models.CV
	err := r.col.FindOneAndUpdate(ctx, bson.M{"user": cv.UserID}, update, opts).Decode(&prev)
	if mongo.IsDuplicateKeyError(err) {
		// two first uploads raced on the unique user index; the loser updates
		err = r.col.FindOneAndUpdate(ctx, bson.M{"user": cv.UserID}, update, opts).Decode(&prev)
	}

	cv.IsApproved = false
	cv.UpdatedAt = now

	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		cv.ID = newID
		cv.CreatedAt = now
		return nil, nil
	case err != nil:
		return nil, translate(err)
	}

	cv.ID = prev.ID
	cv.CreatedAt = prev.CreatedAt
	return &prev, nil
}

func (r *cvRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.CV, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *cvRepo) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.CV, error) {
	return r.findOne(ctx, bson.M{"user": userID})
}

func (r *cvRepo) findOne(ctx context.Context, filter bson.M) (*models.CV, error) {
	var cv models.CV
	if err := r.col.FindOne(ctx, filter).Decode(&cv); err != nil {
		return nil, translate(err)
	}
	return &cv, nil
}

func (r *cvRepo) ListAll(ctx context.Context) ([]models.CV, error) {
	pipeline := mongo.Pipeline{{{Key: "$sort", Value: newestFirst}}}
	pipeline = append(pipeline, ownerStages(true)...)

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.CV{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cvRepo) SetApproval(ctx context.Context, id primitive.ObjectID, approved bool) (*models.CV, error) {
	var cv models.CV
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_approved": approved, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&cv)
	if err != nil {
		return nil, translate(err)
	}
	return &cv, nil
}

func (r *cvRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}
