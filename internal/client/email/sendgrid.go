package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub/internal/config"
)

// SendGridClient delivers mail through the SendGrid v3 API.
type SendGridClient struct {
	cfg    config.EmailConfig
	logger *zap.Logger
}

func NewSendGrid(cfg config.EmailConfig, logger *zap.Logger) *SendGridClient {
	return &SendGridClient{cfg: cfg, logger: logger}
}

func (c *SendGridClient) Send(ctx context.Context, to, replyTo, subject, htmlBody string) error {
	from := mail.NewEmail(c.cfg.FromName, c.cfg.FromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewV3MailInit(from, subject, recipient, mail.NewContent("text/html", htmlBody))
	if replyTo != "" {
		message.SetReplyTo(mail.NewEmail("", replyTo))
	}

	client := sendgrid.NewSendClient(c.cfg.APIKey)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		c.logger.Error("Failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		c.logger.Error("Email rejected",
			zap.String("to", to),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("send email: status %d", resp.StatusCode)
	}

	c.logger.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
