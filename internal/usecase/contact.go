package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"folio-api/internal/domain"
	"folio-api/internal/validation"
)

const emailWarning = "Message saved, but the notification email could not be sent"

type MessageStore interface {
	PutContactMessage(ctx context.Context, msg domain.ContactMessage) error
}

// Notifier delivers a contact message to the site owner.
type Notifier interface {
	NotifyContact(ctx context.Context, msg domain.ContactMessage) error
}

// ContactService accepts contact form submissions.
type ContactService struct {
	store    MessageStore
	notifier Notifier
	validate *validation.Validator
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

type ContactInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,max=255,email"`
	Message  string `json:"message" validate:"required,min=10,max=2000"`
	SourceIP string `json:"-" validate:"-"`
}

type ContactOutput struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	EmailSent bool      `json:"emailSent"`
	Warning   string    `json:"warning,omitempty"`
}

// NewContactService creates a ContactService. notifier may be nil, in which
// case no email is attempted.
func NewContactService(store MessageStore, notifier Notifier, v *validation.Validator, logger *zap.Logger) (*ContactService, error) {
	if store == nil {
		return nil, errors.New("usecase: message store must not be nil")
	}
	if v == nil {
		return nil, errors.New("usecase: validator must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{
		store:    store,
		notifier: notifier,
		validate: v,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}, nil
}

// Submit stores the message and then tries to email it. Email failures are
// logged and surfaced as a warning; they never fail the submission.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (ContactOutput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if err := s.validate.Struct(in); err != nil {
		return ContactOutput{}, validationFailed("invalid_contact", err)
	}

	now := s.now().UTC()
	msg := domain.ContactMessage{
		ID:        s.newID(),
		Timestamp: now.Format(time.RFC3339),
		IP:        in.SourceIP,
		Name:      in.Name,
		Email:     in.Email,
		Message:   in.Message,
	}
	if err := s.store.PutContactMessage(ctx, msg); err != nil {
		return ContactOutput{}, newError(ErrorInternal, "dynamodb_write_error", err)
	}

	out := ContactOutput{ID: msg.ID, CreatedAt: now}
	if s.notifier == nil {
		return out, nil
	}
	if err := s.notifier.NotifyContact(ctx, msg); err != nil {
		s.logger.Warn("contact notification failed", zap.String("id", msg.ID), zap.Error(err))
		out.Warning = emailWarning
		return out, nil
	}
	out.EmailSent = true
	return out, nil
}
