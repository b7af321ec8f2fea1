// Package worker contains the notification worker's message handler: two
// email sends per contact-request event, then idempotent processed
// bookkeeping on the originating record.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/olkipaint/backend/internal/mailer"
	"github.com/olkipaint/backend/internal/queue"
	"github.com/olkipaint/backend/internal/storage"
)

const (
	thankYouSubject = "Спасибо за ваш запрос!"

	thankYouBody = `Здравствуйте, %s!

Спасибо за ваш интерес к нашей продукции. Мы получили ваш запрос и свяжемся с вами в ближайшее время.

С уважением,
Команда OLKI Paint
`

	serviceSubjectFmt = "Новый запрос на контакт от %s"

	serviceBody = `Поступил новый запрос на контакт:

Имя: %s
Email: %s
Телефон: %s
Сообщение: %s

Пожалуйста, свяжитесь с клиентом в ближайшее время.
`

	phonePlaceholder   = "не указан"
	messagePlaceholder = "не указано"
)

// Config holds the fixed addresses used for notification emails.
type Config struct {
	// FromAddress is the sender of both emails.
	FromAddress string
	// ServiceAddress receives the new-contact alert.
	ServiceAddress string
}

// Handler implements queue.MessageHandler. For each event it sends a
// thank-you email to the requester, an alert to the service mailbox, and
// marks the contact request processed.
type Handler struct {
	mailer  mailer.Mailer
	queries storage.Querier
	cfg     Config
	log     zerolog.Logger
}

// NewHandler creates a Handler with the given transport, store, and fixed
// addresses.
func NewHandler(m mailer.Mailer, queries storage.Querier, cfg Config, log zerolog.Logger) *Handler {
	return &Handler{
		mailer:  m,
		queries: queries,
		cfg:     cfg,
		log:     log,
	}
}

var _ queue.MessageHandler = (*Handler)(nil)

// HandleMessage processes one notification event. Any returned error makes
// the consumer reject the delivery without requeue. A missing contact
// request is not an error: the emails already went out, so the event is
// still acknowledged.
func (h *Handler) HandleMessage(ctx context.Context, ev *queue.NotificationEvent) error {
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	if err := h.sendThankYou(ctx, ev); err != nil {
		return fmt.Errorf("send thank-you email: %w", err)
	}

	if err := h.sendServiceNotification(ctx, ev); err != nil {
		return fmt.Errorf("send service notification: %w", err)
	}

	if err := h.queries.MarkContactRequestProcessed(ctx, ev.ContactRequestID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.log.Warn().
				Int64("contact_request_id", ev.ContactRequestID).
				Msg("contact request not found, acknowledging anyway")
			return nil
		}
		return fmt.Errorf("mark contact request %d processed: %w", ev.ContactRequestID, err)
	}

	h.log.Info().
		Int64("contact_request_id", ev.ContactRequestID).
		Str("email", ev.Email).
		Msg("contact request processed")
	return nil
}

// sendThankYou emails the requester.
func (h *Handler) sendThankYou(ctx context.Context, ev *queue.NotificationEvent) error {
	return h.mailer.Send(ctx, &mailer.Message{
		From:    h.cfg.FromAddress,
		To:      []string{ev.Email},
		Subject: thankYouSubject,
		Body:    fmt.Sprintf(thankYouBody, ev.Name),
	})
}

// sendServiceNotification emails the fixed service mailbox. Empty optional
// fields are rendered with placeholder strings.
func (h *Handler) sendServiceNotification(ctx context.Context, ev *queue.NotificationEvent) error {
	phone := ev.Phone
	if phone == "" {
		phone = phonePlaceholder
	}
	message := ev.Message
	if message == "" {
		message = messagePlaceholder
	}

	return h.mailer.Send(ctx, &mailer.Message{
		From:    h.cfg.FromAddress,
		To:      []string{h.cfg.ServiceAddress},
		Subject: fmt.Sprintf(serviceSubjectFmt, ev.Name),
		Body:    fmt.Sprintf(serviceBody, ev.Name, ev.Email, phone, message),
	})
}
