package services

import (
	"fmt"
	"sync"

	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/paperdb/internal/config"
	"github.com/localnerve/paperdb/internal/utils"
	"go.uber.org/zap"
)

// SessionValidator resolves a session cookie to the id of the signed-in user.
type SessionValidator interface {
	ValidateSession(cookie string, protocol, host string) (string, error)
}

// AuthorizerSessions validates sessions against an Authorizer instance. The
// client is created on first use, when the public request origin is known.
type AuthorizerSessions struct {
	cfg    config.AuthzConfig
	logger *zap.Logger

	once    sync.Once
	client  *authorizer.AuthorizerClient
	initErr error
}

// NewAuthorizerSessions creates a validator for the configured Authorizer.
func NewAuthorizerSessions(cfg config.AuthzConfig, logger *zap.Logger) *AuthorizerSessions {
	return &AuthorizerSessions{cfg: cfg, logger: logger}
}

func (a *AuthorizerSessions) init(protocol, host string) error {
	a.once.Do(func() {
		// Ping the Authorizer service first
		if err := utils.PingAuthorizer(a.cfg.URL); err != nil {
			a.initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		redirectURL := fmt.Sprintf("%s://%s", protocol, host)
		a.logger.Info("initializing authorizer",
			zap.String("authorizer_url", a.cfg.URL),
			zap.String("client_id", a.cfg.ClientID),
			zap.String("redirect_url", redirectURL),
		)

		var err error
		a.client, err = authorizer.NewAuthorizerClient(a.cfg.ClientID, a.cfg.URL, redirectURL, nil)
		if err != nil {
			a.initErr = fmt.Errorf("failed to create authorizer client: %w", err)
		}
	})
	return a.initErr
}

// ValidateSession validates a session cookie and returns the user id.
// Domain roles are checked by the workflow engine, not here.
func (a *AuthorizerSessions) ValidateSession(cookie string, protocol, host string) (string, error) {
	if err := a.init(protocol, host); err != nil {
		return "", err
	}

	res, err := a.client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
	})
	if err != nil {
		return "", fmt.Errorf("session validation failed: %w", err)
	}

	// Check if session is valid
	if res == nil || !res.IsValid || res.User == nil {
		return "", fmt.Errorf("session is not valid")
	}

	return res.User.ID, nil
}
