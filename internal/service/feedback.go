package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/bookradio/bookradio-server/internal/mailer"
	"github.com/bookradio/bookradio-server/internal/validation"
)

// FeedbackService forwards listener feedback to the site operators by
// email.
type FeedbackService struct {
	mailer    mailer.Mailer
	validator *validation.Validator
	logger    *slog.Logger
	recipient string
}

// NewFeedbackService creates a feedback service delivering to recipient.
func NewFeedbackService(m mailer.Mailer, v *validation.Validator, recipient string, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{
		mailer:    m,
		validator: v,
		logger:    logger,
		recipient: recipient,
	}
}

// FeedbackRequest is a single piece of listener feedback.
type FeedbackRequest struct {
	Name    string `json:"name" validate:"required,max=128"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Submit validates feedback and mails it to the configured recipient.
func (s *FeedbackService) Submit(ctx context.Context, req FeedbackRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	msg := mailer.Message{
		To:       s.recipient,
		Subject:  "BookRadio feedback: " + req.Subject,
		BodyText: s.textBody(req),
		BodyHTML: s.htmlBody(req),
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("deliver feedback: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Feedback forwarded", "from", req.Email, "subject", req.Subject)
	}
	return nil
}

func (s *FeedbackService) textBody(req FeedbackRequest) string {
	return fmt.Sprintf("From: %s <%s>\nReceived: %s\n\n%s\n",
		req.Name, req.Email, time.Now().Format(time.RFC1123), req.Message)
}

func (s *FeedbackService) htmlBody(req FeedbackRequest) string {
	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #2c3e50;">New feedback</h2>
<p><strong>From:</strong> %s &lt;%s&gt;</p>
<p><strong>Subject:</strong> %s</p>
<hr>
<p style="white-space: pre-wrap;">%s</p>
</div>`,
		html.EscapeString(req.Name),
		html.EscapeString(req.Email),
		html.EscapeString(req.Subject),
		html.EscapeString(req.Message))
}
