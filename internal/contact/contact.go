// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PrepPathway Contributors

// Package contact handles contact-form intake and delivery.
package contact

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/preppathway/preppathway/internal/auth"
)

// MinMessageLength is the minimum number of characters a message must contain.
const MinMessageLength = 10

// Message is a validated contact-form submission.
type Message struct {
	Name    string
	Email   string
	Subject string
	Body    string
}

// NewMessage validates and constructs a contact message.
func NewMessage(name, email, subject, body string) (Message, error) {
	m := Message{
		Name:    strings.TrimSpace(name),
		Email:   strings.TrimSpace(email),
		Subject: strings.TrimSpace(subject),
		Body:    strings.TrimSpace(body),
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Validate checks all fields against the intake rules.
func (m Message) Validate() error {
	if m.Name == "" {
		return oops.Code("CONTACT_INVALID").Errorf("name is required")
	}
	if err := auth.ValidateEmail(m.Email); err != nil {
		return oops.Code("CONTACT_INVALID").Errorf("invalid email address")
	}
	if m.Subject == "" {
		return oops.Code("CONTACT_INVALID").Errorf("subject is required")
	}
	if len(m.Body) < MinMessageLength {
		return oops.Code("CONTACT_INVALID").
			With("min_length", MinMessageLength).
			Errorf("message must be at least %d characters", MinMessageLength)
	}
	return nil
}

// Sender delivers a contact message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender simulates delivery by logging the would-be mail.
// Real mail dispatch is out of scope; the simulated delay matches
// what a mail provider round trip would cost.
type LogSender struct {
	logger *slog.Logger
	delay  time.Duration
}

// NewLogSender creates a LogSender. A nil logger uses slog.Default.
func NewLogSender(logger *slog.Logger, delay time.Duration) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger, delay: delay}
}

// Send logs the message after the configured delay.
// Respects context cancellation during the delay.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return oops.Code("CONTACT_SEND_FAILED").Wrap(ctx.Err())
		case <-timer.C:
		}
	}

	s.logger.InfoContext(ctx, "contact message received",
		"from_name", msg.Name,
		"from_email", msg.Email,
		"subject", msg.Subject,
		"message_length", len(msg.Body),
	)
	return nil
}
