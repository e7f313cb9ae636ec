package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gatehouse/gatehouse/internal/shared"
)

// MinPasswordLength is the registration password policy.
const MinPasswordLength = 8

// RepositoryPort defines data access methods for principals.
type RepositoryPort interface {
	Create(ctx context.Context, email, passwordHash string, createdAt time.Time) (int64, error)
	GetByID(ctx context.Context, id int64) (*Principal, error)
	GetByEmail(ctx context.Context, email string) (*Principal, error)
	SetEmailConfirmed(ctx context.Context, id int64, at time.Time) error
	Activate(ctx context.Context, id int64, pinHash string) error
	SetStatus(ctx context.Context, id int64, status Status) error
	SetRole(ctx context.Context, id int64, role Role, expiresAt *time.Time) error
	ListPINHashes(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]Principal, error)
}

// Mailer enqueues confirmation-email delivery. Implemented by jobs.Client.
type Mailer interface {
	EnqueueConfirmationEmail(ctx context.Context, to, token string) error
}

// Registration is the outcome of a successful Register call. The token is
// handed back so the surrounding layer can build the confirmation link.
type Registration struct {
	PrincipalID       int64
	ConfirmationToken string
}

// Service owns the account lifecycle and role authority.
type Service struct {
	repo   RepositoryPort
	signer *TokenSigner
	mailer Mailer
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the lifecycle service. The mailer may be nil; token
// delivery is then left to the caller.
func NewService(repo RepositoryPort, signer *TokenSigner, mailer Mailer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		signer: signer,
		mailer: mailer,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeEmail case-folds and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new INACTIVE principal and issues a confirmation token.
func (s *Service) Register(ctx context.Context, email, password string) (Registration, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return Registration{}, fmt.Errorf("accounts: %w: email required", shared.ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return Registration{}, fmt.Errorf("accounts: %w: password below minimum length", shared.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Registration{}, fmt.Errorf("accounts: hash password: %w", err)
	}
	now := s.now()
	id, err := s.repo.Create(ctx, email, string(hash), now)
	if err != nil {
		return Registration{}, err
	}
	token, err := s.signer.ConfirmationToken(email, now)
	if err != nil {
		return Registration{}, fmt.Errorf("accounts: sign confirmation token: %w", err)
	}
	if s.mailer != nil {
		if err := s.mailer.EnqueueConfirmationEmail(ctx, email, token); err != nil {
			s.logger.Warn("enqueue confirmation email", slog.String("email", email), slog.Any("error", err))
		}
	}
	return Registration{PrincipalID: id, ConfirmationToken: token}, nil
}

// ConfirmEmail consumes a confirmation token. Confirming an already confirmed
// account is a no-op, so a token may be replayed without error.
func (s *Service) ConfirmEmail(ctx context.Context, token string) error {
	email, err := s.signer.ConfirmationEmail(token)
	if err != nil {
		return err
	}
	principal, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}
	if principal.EmailConfirmed() {
		return nil
	}
	return s.repo.SetEmailConfirmed(ctx, principal.ID, s.now())
}

// Approve activates a confirmed account and issues a fresh PIN. The plaintext
// PIN is returned exactly once and never stored. Approving an already active
// account is allowed and rotates the PIN.
func (s *Service) Approve(ctx context.Context, id int64) (string, error) {
	principal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !principal.EmailConfirmed() {
		return "", shared.ErrNotEmailConfirmed
	}
	existing, err := s.repo.ListPINHashes(ctx)
	if err != nil {
		return "", err
	}
	pin, err := uniquePIN(existing)
	if err != nil {
		return "", err
	}
	hash, err := HashPIN(pin)
	if err != nil {
		return "", err
	}
	if err := s.repo.Activate(ctx, id, hash); err != nil {
		return "", err
	}
	return pin, nil
}

// Deactivate flips an account back to INACTIVE. The issued PIN stays on the
// row; the lifecycle gate denies access regardless.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.SetStatus(ctx, id, StatusInactive)
}

// GrantTemporaryAdmin sets ADMIN with a future expiry.
func (s *Service) GrantTemporaryAdmin(ctx context.Context, id int64, expiresAt time.Time) error {
	expiresAt = expiresAt.UTC()
	if !expiresAt.After(s.now()) {
		return shared.ErrPastExpiry
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.SetRole(ctx, id, RoleAdmin, &expiresAt)
}

// ClearAdmin resets the role to USER and drops the expiry.
func (s *Service) ClearAdmin(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.SetRole(ctx, id, RoleUser, nil)
}

// Authenticate validates email/password login credentials. The account must
// have a confirmed email before login succeeds.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Principal, error) {
	principal, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(password)) != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !principal.EmailConfirmed() {
		return nil, shared.ErrNotEmailConfirmed
	}
	return principal, nil
}

// Get fetches a single principal.
func (s *Service) Get(ctx context.Context, id int64) (*Principal, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all principals, newest first.
func (s *Service) List(ctx context.Context) ([]Principal, error) {
	return s.repo.List(ctx)
}
