package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/portfolio/internal/models"
	mongorepo "github.com/yoockh/portfolio/internal/repositories/mongo"
	"github.com/yoockh/portfolio/internal/utils"
	"github.com/yoockh/portfolio/internal/validation"
)

type ContactInput struct {
	Name    string `json:"name" validate:"min=2"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"min=10"`

	// request metadata, filled by the handler
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type contactStatusInput struct {
	Status string `json:"status" validate:"required,oneof=new read replied archived"`
}

type ContactService interface {
	Submit(ctx context.Context, in ContactInput) (*models.ContactMessage, error)
	ListAll(ctx context.Context) ([]models.ContactMessage, error)
	SetStatus(ctx context.Context, id, status string) (*models.ContactMessage, error)
}

type contactService struct {
	contacts mongorepo.ContactRepository
	log      *logrus.Logger
}

func NewContactService(contacts mongorepo.ContactRepository, log *logrus.Logger) ContactService {
	if log == nil {
		log = logrus.New()
	}
	return &contactService{contacts: contacts, log: log}
}

func (s *contactService) Submit(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	const op = "ContactService.Submit"

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(op, in); err != nil {
		return nil, err
	}

	m := &models.ContactMessage{
		Name:      in.Name,
		Email:     in.Email,
		Message:   in.Message,
		Status:    models.ContactNew,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
	}
	if err := s.contacts.Create(ctx, m); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "Failed to send message. Please try again later.", err)
	}

	s.log.WithFields(logrus.Fields{
		"contact_id": m.ID.Hex(),
		"email":      m.Email,
	}).Info("new contact form submission")
	return m, nil
}

func (s *contactService) ListAll(ctx context.Context) ([]models.ContactMessage, error) {
	const op = "ContactService.ListAll"

	out, err := s.contacts.ListAll(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "Failed to fetch contact messages", err)
	}
	return out, nil
}

// SetStatus moves a message to any status; there are no transition rules.
func (s *contactService) SetStatus(ctx context.Context, id, status string) (*models.ContactMessage, error) {
	const op = "ContactService.SetStatus"

	in := contactStatusInput{Status: strings.TrimSpace(status)}
	if err := validation.Struct(op, in); err != nil {
		return nil, err
	}

	oid, err := parseID(op, id, "Contact message")
	if err != nil {
		return nil, err
	}

	m, err := s.contacts.SetStatus(ctx, oid, models.ContactStatus(in.Status))
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Contact message not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "Failed to update contact message status", err)
	}
	return m, nil
}
