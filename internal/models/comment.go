package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CommentMaxLength = 500
	DefaultRating    = 5
)

type Comment struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user" json:"-"`

	// copied from the author at creation time
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email,omitempty"`

	Message    string `bson:"message" json:"message"`
	Rating     int    `bson:"rating" json:"rating"`
	IsApproved bool   `bson:"is_approved" json:"isApproved"`

	// populated by listing queries only
	User *UserRef `bson:"owner,omitempty" json:"user,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
