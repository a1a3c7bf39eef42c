package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yoockh/portfolio/internal/models"
	mongorepo "github.com/yoockh/portfolio/internal/repositories/mongo"
	"github.com/yoockh/portfolio/internal/utils"
	"github.com/yoockh/portfolio/internal/validation"
)

type CreateCommentInput struct {
	Message string `json:"message" validate:"required,max=500"`
	Rating  *int   `json:"rating" validate:"omitempty,min=1,max=5"`
}

type CommentService interface {
	Create(ctx context.Context, author *models.User, in CreateCommentInput) (*models.Comment, error)
	ListPublic(ctx context.Context) ([]models.Comment, error)
	ListAll(ctx context.Context) ([]models.Comment, error)
	SetApproval(ctx context.Context, id string, approved bool) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

type commentService struct {
	comments mongorepo.CommentRepository
	users    mongorepo.UserRepository
}

func NewCommentService(comments mongorepo.CommentRepository, users mongorepo.UserRepository) CommentService {
	return &commentService{comments: comments, users: users}
}

func (s *commentService) Create(ctx context.Context, author *models.User, in CreateCommentInput) (*models.Comment, error) {
	const op = "CommentService.Create"

	if author == nil || author.ID.IsZero() {
		return nil, utils.E(utils.CodeUnauthorized, op, "not authorized", nil)
	}

	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(op, in); err != nil {
		return nil, err
	}

	rating := models.DefaultRating
	if in.Rating != nil {
		rating = *in.Rating
	}

	c := &models.Comment{
		UserID:     author.ID,
		Name:       author.Name,
		Email:      author.Email,
		Message:    in.Message,
		Rating:     rating,
		IsApproved: false,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create comment", err)
	}

	c.User = &models.UserRef{ID: author.ID, Name: author.Name}
	return c, nil
}

// ListPublic returns approved comments, newest first, without author emails.
func (s *commentService) ListPublic(ctx context.Context) ([]models.Comment, error) {
	const op = "CommentService.ListPublic"

	out, err := s.comments.ListApproved(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list comments", err)
	}
	for i := range out {
		out[i].Email = ""
		if out[i].User != nil {
			out[i].User.Email = ""
		}
	}
	return out, nil
}

func (s *commentService) ListAll(ctx context.Context) ([]models.Comment, error) {
	const op = "CommentService.ListAll"

	out, err := s.comments.ListAll(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list comments", err)
	}
	return out, nil
}

func (s *commentService) SetApproval(ctx context.Context, id string, approved bool) (*models.Comment, error) {
	const op = "CommentService.SetApproval"

	oid, err := parseID(op, id, "Comment")
	if err != nil {
		return nil, err
	}

	c, err := s.comments.SetApproval(ctx, oid, approved)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Comment not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update comment", err)
	}

	c.User = ownerRef(ctx, s.users, c.UserID, true)
	return c, nil
}

func (s *commentService) Delete(ctx context.Context, id string) error {
	const op = "CommentService.Delete"

	oid, err := parseID(op, id, "Comment")
	if err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, oid); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "Comment not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete comment", err)
	}
	return nil
}
