package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/portfolio/internal/models"
	mongorepo "github.com/yoockh/portfolio/internal/repositories/mongo"
	"github.com/yoockh/portfolio/internal/utils"
)

type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	// Delete removes a user together with their comments and CV.
	Delete(ctx context.Context, actor *models.User, id string) error
}

type userService struct {
	users    mongorepo.UserRepository
	comments mongorepo.CommentRepository
	cvs      CVService
	log      *logrus.Logger
}

func NewUserService(users mongorepo.UserRepository, comments mongorepo.CommentRepository, cvs CVService, log *logrus.Logger) UserService {
	if log == nil {
		log = logrus.New()
	}
	return &userService{users: users, comments: comments, cvs: cvs, log: log}
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	const op = "UserService.List"

	out, err := s.users.List(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list users", err)
	}
	return out, nil
}

func (s *userService) Delete(ctx context.Context, actor *models.User, id string) error {
	const op = "UserService.Delete"

	oid, err := parseID(op, id, "User")
	if err != nil {
		return err
	}
	if actor != nil && actor.ID == oid {
		return utils.E(utils.CodeForbidden, op, "You cannot delete your own account", nil)
	}

	if _, err := s.users.GetByID(ctx, oid); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "User not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to load user", err)
	}

	// owned records first so a failure never leaves orphans behind a deleted user
	n, err := s.comments.DeleteByUser(ctx, oid)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete user comments", err)
	}
	if err := s.cvs.RemoveForUser(ctx, oid); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, oid); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "User not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete user", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":          oid.Hex(),
		"deleted_comments": n,
		"actor_id":         actorID(actor),
	}).Info("user deleted")
	return nil
}

func actorID(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.ID.Hex()
}
