// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package mail provides outbound transactional email delivery.
//
// # Architecture
//
// Domain services depend on the [Mailer] interface and never on a concrete
// provider. Production wires [SendGridMailer]; local development and tests
// wire [LogMailer], which only records the send in the structured log.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers transactional emails to a single recipient.
type Mailer interface {
	// SendVerification sends the email-address verification link issued at registration.
	SendVerification(ctx context.Context, toEmail, toName, verifyURL string) error

	// SendPasswordReset sends a password reset link.
	SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string) error

	// SendTeamInvite sends an organization invitation link.
	SendTeamInvite(ctx context.Context, toEmail, orgName, inviteURL string) error
}

// # SendGrid Implementation

// SendGridMailer delivers email through the SendGrid v3 API.
type SendGridMailer struct {
	client     *sendgrid.Client
	senderName string
	senderAddr string
	logger     *slog.Logger
}

// NewSendGridMailer creates a production mailer backed by SendGrid.
func NewSendGridMailer(apiKey, senderName, senderAddr string, logger *slog.Logger) *SendGridMailer {
	return &SendGridMailer{
		client:     sendgrid.NewSendClient(apiKey),
		senderName: senderName,
		senderAddr: senderAddr,
		logger:     logger,
	}
}

// SendVerification implements [Mailer].
func (mailer *SendGridMailer) SendVerification(ctx context.Context, toEmail, toName, verifyURL string) error {
	subject := "Verify your Ritmus account"
	plain := fmt.Sprintf("Hi %s,\n\nConfirm your email address to activate your Ritmus account:\n\n%s\n\nIf you did not sign up, you can ignore this email.", toName, verifyURL)
	html := fmt.Sprintf(`<p>Hi %s,</p><p>Confirm your email address to activate your Ritmus account:</p><p><a href="%s">Verify email</a></p><p>If you did not sign up, you can ignore this email.</p>`, toName, verifyURL)

	return mailer.send(ctx, toEmail, toName, subject, plain, html)
}

// SendPasswordReset implements [Mailer].
func (mailer *SendGridMailer) SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string) error {
	subject := "Reset your Ritmus password"
	plain := fmt.Sprintf("Hi %s,\n\nA password reset was requested for your account. Use the link below to choose a new password:\n\n%s\n\nIf you did not request this, you can ignore this email.", toName, resetURL)
	html := fmt.Sprintf(`<p>Hi %s,</p><p>A password reset was requested for your account. Use the link below to choose a new password:</p><p><a href="%s">Reset password</a></p><p>If you did not request this, you can ignore this email.</p>`, toName, resetURL)

	return mailer.send(ctx, toEmail, toName, subject, plain, html)
}

// SendTeamInvite implements [Mailer].
func (mailer *SendGridMailer) SendTeamInvite(ctx context.Context, toEmail, orgName, inviteURL string) error {
	subject := fmt.Sprintf("You've been invited to %s on Ritmus", orgName)
	plain := fmt.Sprintf("You've been invited to join %s on Ritmus.\n\nAccept the invitation:\n\n%s", orgName, inviteURL)
	html := fmt.Sprintf(`<p>You've been invited to join <strong>%s</strong> on Ritmus.</p><p><a href="%s">Accept invitation</a></p>`, orgName, inviteURL)

	return mailer.send(ctx, toEmail, "", subject, plain, html)
}

func (mailer *SendGridMailer) send(ctx context.Context, toEmail, toName, subject, plain, html string) error {
	from := sgmail.NewEmail(mailer.senderName, mailer.senderAddr)
	to := sgmail.NewEmail(toName, toEmail)
	message := sgmail.NewSingleEmail(from, subject, to, plain, html)

	response, err := mailer.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("mail: sendgrid request failed: %w", err)
	}

	// SendGrid accepts with 202. Anything else is a delivery failure.
	if response.StatusCode >= 300 {
		mailer.logger.Error("sendgrid rejected message",
			"status", response.StatusCode,
			"to", toEmail,
			"subject", subject,
		)
		return fmt.Errorf("mail: sendgrid rejected message with status %d", response.StatusCode)
	}

	mailer.logger.Info("email sent", "to", toEmail, "subject", subject)
	return nil
}

// # Development Implementation

// LogMailer records sends in the structured log instead of delivering them.
// It is wired when no SendGrid API key is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a mailer that only logs.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendVerification implements [Mailer].
func (mailer *LogMailer) SendVerification(_ context.Context, toEmail, toName, verifyURL string) error {
	mailer.logger.Info("email skipped (no provider configured)",
		"kind", "verification", "to", toEmail, "name", toName, "url", verifyURL)
	return nil
}

// SendPasswordReset implements [Mailer].
func (mailer *LogMailer) SendPasswordReset(_ context.Context, toEmail, toName, resetURL string) error {
	mailer.logger.Info("email skipped (no provider configured)",
		"kind", "password_reset", "to", toEmail, "name", toName, "url", resetURL)
	return nil
}

// SendTeamInvite implements [Mailer].
func (mailer *LogMailer) SendTeamInvite(_ context.Context, toEmail, orgName, inviteURL string) error {
	mailer.logger.Info("email skipped (no provider configured)",
		"kind", "team_invite", "to", toEmail, "org", orgName, "url", inviteURL)
	return nil
}
