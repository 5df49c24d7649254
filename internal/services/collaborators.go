package services

//go:generate mockgen -source=collaborators.go -destination=mocks/mock_collaborators.go -package=mocks

import (
	"context"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/circle/backend/internal/models"
)

// Notifier persists notification records. Delivery beyond storage is not its concern.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
}

// Mailer delivers password reset codes.
type Mailer interface {
	SendPasswordResetCode(ctx context.Context, to, code string, ttl time.Duration) error
}

// FirebaseVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type FirebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}
