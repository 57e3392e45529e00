package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"confide/internal/platform/metrics"
	dErrors "confide/pkg/domain-errors"
	"confide/pkg/platform/sentinel"
)

// maxGenerateAttempts bounds the pseudonym retry loop; with the dictionary
// sizes involved, hitting it means the store is effectively full or broken.
const maxGenerateAttempts = 20

// Service issues anonymous identities: a collision-free pseudonym, an optional
// password hash, and a signed access token.
type Service struct {
	store   Store
	tokens  *TokenService
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, tokens *TokenService, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, tokens: tokens, logger: logger, metrics: m}
}

// Register creates a new anonymous user. The password is optional; when
// present it is bcrypt-hashed so the pseudonym can be reclaimed later.
func (s *Service) Register(ctx context.Context, password string) (*Registration, error) {
	username, err := s.issuePseudonym(ctx)
	if err != nil {
		return nil, err
	}

	var hash string
	if password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeInternal, "failed to hash password")
		}
		hash = string(hashed)
	}

	now := time.Now()
	user := &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
	}

	if err := s.store.Create(ctx, user); err != nil {
		// A racing register grabbed the name between the existence check and
		// the insert; one more pass through the generator settles it.
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return s.Register(ctx, password)
		}
		s.logger.ErrorContext(ctx, "failed to create user", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to register")
	}

	token, err := s.tokens.Issue(user, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to issue access token", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to register")
	}

	s.metrics.UsersRegistered.Inc()
	return &Registration{
		UserID:      user.ID,
		Username:    user.Username,
		AccessToken: token,
	}, nil
}

func (s *Service) issuePseudonym(ctx context.Context) (string, error) {
	for range maxGenerateAttempts {
		candidate := Generate()
		taken, err := s.store.UsernameTaken(ctx, candidate)
		if err != nil {
			s.logger.ErrorContext(ctx, "pseudonym existence check failed", "error", err)
			return "", dErrors.New(dErrors.CodeInternal, "failed to register")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInternal, "pseudonym space exhausted")
}
