package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

type CV struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user" json:"-"`

	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`

	FileName     string `bson:"file_name" json:"fileName"`
	OriginalName string `bson:"original_name" json:"originalName"`
	FilePath     string `bson:"file_path" json:"-"` // storage key
	FileSize     int64  `bson:"file_size" json:"fileSize"`
	MimeType     string `bson:"mime_type" json:"mimeType"`
	IsApproved   bool   `bson:"is_approved" json:"isApproved"`

	User *UserRef `bson:"owner,omitempty" json:"user,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
