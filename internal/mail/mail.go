// Package mail delivers password reset codes.
package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/circle/backend/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// sesAPI is the part of *ses.Client the mailer uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESMailer sends mail through AWS SES.
type SESMailer struct {
	client sesAPI
	from   string
}

// NewSESMailer loads the default AWS credential chain for region.
func NewSESMailer(ctx context.Context, region, from string) (*SESMailer, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &SESMailer{client: ses.NewFromConfig(cfg), from: from}, nil
}

func (m *SESMailer) SendPasswordResetCode(ctx context.Context, to, code string, ttl time.Duration) error {
	subject := "Your Circle password reset code"
	text := fmt.Sprintf(`Your password reset code is %s.

The code expires in %d minutes. If you did not ask to reset your password you can ignore this message.
`, code, int(ttl.Minutes()))
	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
	<h2>Reset your password</h2>
	<p>Your password reset code is:</p>
	<p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">%s</p>
	<p>The code expires in %d minutes. If you did not ask to reset your password you can ignore this message.</p>
</body>
</html>`, code, int(ttl.Minutes()))

	input := &ses.SendEmailInput{
		Source: aws.String(m.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")},
				Text: &types.Content{Data: aws.String(text), Charset: aws.String("UTF-8")},
			},
		},
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

// LogMailer writes reset codes to the log. It is used in development when no
// SES sender is configured.
type LogMailer struct{}

func (LogMailer) SendPasswordResetCode(_ context.Context, to, code string, ttl time.Duration) error {
	logger.Log.Info("password reset code",
		zap.String("to", to),
		zap.String("code", code),
		zap.Duration("ttl", ttl),
	)
	return nil
}
