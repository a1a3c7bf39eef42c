package mongo

import (
	"context"
	"time"

	"github.com/yoockh/portfolio/internal/models"
	"github.com/yoockh/portfolio/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	ListApproved(ctx context.Context) ([]models.Comment, error)
	ListAll(ctx context.Context) ([]models.Comment, error)
	SetApproval(ctx context.Context, id primitive.ObjectID, approved bool) (*models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type commentRepo struct {
	col *mongo.Collection
}

func NewCommentRepo(db *mongo.Database) CommentRepository {
	return &commentRepo{col: db.Collection(CommentsCollection)}
}

func (r *commentRepo) Create(ctx context.Context, c *models.Comment) error {
	now := time.Now().UTC()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, c)
	return translate(err)
}

func (r *commentRepo) ListApproved(ctx context.Context) ([]models.Comment, error) {
	return r.list(ctx, bson.M{"is_approved": true}, false)
}

func (r *commentRepo) ListAll(ctx context.Context) ([]models.Comment, error) {
	return r.list(ctx, bson.M{}, true)
}

func (r *commentRepo) list(ctx context.Context, filter bson.M, withEmail bool) ([]models.Comment, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: newestFirst}},
	}
	pipeline = append(pipeline, ownerStages(withEmail)...)

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Comment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *commentRepo) SetApproval(ctx context.Context, id primitive.ObjectID, approved bool) (*models.Comment, error) {
	var c models.Comment
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_approved": approved, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *commentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *commentRepo) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
