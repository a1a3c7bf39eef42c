package mongo

import (
	"context"
	"time"

	"github.com/yoockh/portfolio/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ContactRepository interface {
	Create(ctx context.Context, m *models.ContactMessage) error
	ListAll(ctx context.Context) ([]models.ContactMessage, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.ContactStatus) (*models.ContactMessage, error)
}

type contactRepo struct {
	col *mongo.Collection
}

func NewContactRepo(db *mongo.Database) ContactRepository {
	return &contactRepo{col: db.Collection(ContactsCollection)}
}

func (r *contactRepo) Create(ctx context.Context, m *models.ContactMessage) error {
	now := time.Now().UTC()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, m)
	return translate(err)
}

func (r *contactRepo) ListAll(ctx context.Context) ([]models.ContactMessage, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ContactMessage{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contactRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status models.ContactStatus) (*models.ContactMessage, error) {
	var m models.ContactMessage
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}
