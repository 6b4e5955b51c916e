package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/pkg/utils"
)

type stubCredentialStore struct {
	accounts map[string]*models.Account
}

func (s *stubCredentialStore) GetByID(_ context.Context, id int64) (*models.Account, error) {
	for _, account := range s.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubCredentialStore) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	for _, account := range s.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubCredentialStore) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	if account, ok := s.accounts[username]; ok {
		return account, nil
	}
	return nil, pgx.ErrNoRows
}

type stubSessionWriter struct {
	createdAccountID int64
	createdTokenID   string
	revokedTokenID   string
}

func (s *stubSessionWriter) Create(_ context.Context, accountID int64, tokenID string, _ time.Time) error {
	s.createdAccountID = accountID
	s.createdTokenID = tokenID
	return nil
}

func (s *stubSessionWriter) Revoke(_ context.Context, tokenID string) error {
	s.revokedTokenID = tokenID
	return nil
}

const authTestSecret = "auth-test-secret"

func newAuthTestService(t *testing.T, tokens *stubSessionWriter) *AuthService {
	t.Helper()

	hash, err := utils.HashPassword("Str0ngPass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	accounts := &stubCredentialStore{accounts: map[string]*models.Account{
		"jane.d": {ID: 42, Email: "jane@example.com", Username: "jane.d", PasswordHash: hash, Role: models.RoleParent, Status: models.AccountStatusActive},
		"gone.p": {ID: 43, Email: "gone@example.com", Username: "gone.p", PasswordHash: hash, Role: models.RoleParent, Status: models.AccountStatusInactive},
	}}

	return NewAuthService(nil, accounts, nil, nil, tokens, authTestSecret, time.Hour)
}

// A wrong username, a wrong password, and the wrong role must be
// indistinguishable to the caller.
func TestLoginFailureCausesCollapseToOneError(t *testing.T) {
	service := newAuthTestService(t, &stubSessionWriter{})
	ctx := context.Background()

	cases := []struct {
		name     string
		role     string
		username string
		password string
	}{
		{"unknown username", models.RoleParent, "nobody", "Str0ngPass"},
		{"wrong password", models.RoleParent, "jane.d", "wrong-pass"},
		{"wrong role", models.RoleTutor, "jane.d", "Str0ngPass"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Login(ctx, tc.role, tc.username, tc.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestLoginInactiveAccountRejected(t *testing.T) {
	service := newAuthTestService(t, &stubSessionWriter{})

	_, err := service.Login(context.Background(), models.RoleParent, "gone.p", "Str0ngPass")
	if !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestLoginStoresSessionAndSignsAccountID(t *testing.T) {
	tokens := &stubSessionWriter{}
	service := newAuthTestService(t, tokens)

	result, err := service.Login(context.Background(), models.RoleParent, "jane.d", "Str0ngPass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Account.ID != 42 || result.Token == "" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if tokens.createdAccountID != 42 {
		t.Fatalf("expected session for account 42, got %d", tokens.createdAccountID)
	}

	claims, err := utils.ValidateToken(result.Token, authTestSecret)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != "42" || claims.UserID != "42" {
		t.Fatalf("expected token for account 42, got subject %q uid %q", claims.Subject, claims.UserID)
	}
	if claims.ID != tokens.createdTokenID {
		t.Fatalf("token jti %q does not match stored session %q", claims.ID, tokens.createdTokenID)
	}
}

func TestRevokeSessionForwardsTokenID(t *testing.T) {
	tokens := &stubSessionWriter{}
	service := newAuthTestService(t, tokens)

	if err := service.RevokeSession(context.Background(), "session-jti"); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}
	if tokens.revokedTokenID != "session-jti" {
		t.Fatalf("expected session-jti revoked, got %q", tokens.revokedTokenID)
	}
}
