package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/repository"
	"github.com/sabirama/tutorial-hub-sub000/pkg/utils"
)

var (
	ErrEmailTaken         = errors.New("email taken")
	ErrUsernameTaken      = errors.New("username taken")
	ErrAccountExists      = errors.New("account exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")
)

type credentialStore interface {
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
}

type sessionWriter interface {
	Create(ctx context.Context, accountID int64, tokenID string, expiresAt time.Time) error
	Revoke(ctx context.Context, tokenID string) error
}

type parentProfileReader interface {
	GetByAccountID(ctx context.Context, accountID int64) (*models.ParentProfile, error)
}

type tutorProfileReader interface {
	GetByAccountID(ctx context.Context, accountID int64) (*models.TutorProfile, error)
}

type AuthService struct {
	db        *pgxpool.Pool
	accounts  credentialStore
	parents   parentProfileReader
	tutors    tutorProfileReader
	tokens    sessionWriter
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(
	db *pgxpool.Pool,
	accounts credentialStore,
	parents parentProfileReader,
	tutors tutorProfileReader,
	tokens sessionWriter,
	jwtSecret string,
	tokenTTL time.Duration,
) *AuthService {
	return &AuthService{
		db:        db,
		accounts:  accounts,
		parents:   parents,
		tutors:    tutors,
		tokens:    tokens,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

type RegisterInput struct {
	Email         string
	Username      string
	Password      string
	FullName      string
	ContactNumber *string
}

type AuthResult struct {
	Account *models.Account
	Token   string
}

type AccountDetail struct {
	Account       *models.Account
	ParentProfile *models.ParentProfile
	TutorProfile  *models.TutorProfile
}

// Register creates the account, its role profile, and an initial session in
// one transaction. The unique constraints on accounts back the pre-checks,
// so a racing duplicate still fails with ErrAccountExists.
func (s *AuthService) Register(ctx context.Context, role string, input RegisterInput) (*AuthResult, error) {
	if existing, err := s.accounts.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing, err := s.accounts.GetByUsername(ctx, input.Username); err == nil && existing != nil {
		return nil, ErrUsernameTaken
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hashed,
		Role:         role,
		Status:       models.AccountStatusPending,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := repository.NewAccountRepository(tx).Create(ctx, account); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAccountExists
		}
		return nil, err
	}

	fullName := input.FullName
	if role == models.RoleParent {
		if err := repository.NewParentProfileRepository(tx).Create(ctx, account.ID, &fullName, input.ContactNumber); err != nil {
			return nil, err
		}
	} else {
		if err := repository.NewTutorProfileRepository(tx).Create(ctx, account.ID, &fullName, input.ContactNumber); err != nil {
			return nil, err
		}
	}

	token, tokenID, err := utils.GenerateToken(strconv.FormatInt(account.ID, 10), account.Role, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	if err := repository.NewTokenRepository(tx).Create(ctx, account.ID, tokenID, time.Now().UTC().Add(s.tokenTTL)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &AuthResult{Account: account, Token: token}, nil
}

// Login checks the credentials and opens a tracked session. A wrong
// username, wrong password, and wrong role all return ErrInvalidCredentials,
// so a caller cannot probe which usernames exist.
func (s *AuthService) Login(ctx context.Context, role, username, password string) (*AuthResult, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if account.Role != role || !utils.CheckPassword(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if account.Status == models.AccountStatusInactive {
		return nil, ErrAccountInactive
	}

	token, tokenID, err := utils.GenerateToken(strconv.FormatInt(account.ID, 10), account.Role, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(ctx, account.ID, tokenID, time.Now().UTC().Add(s.tokenTTL)); err != nil {
		return nil, err
	}

	return &AuthResult{Account: account, Token: token}, nil
}

func (s *AuthService) RevokeSession(ctx context.Context, tokenID string) error {
	return s.tokens.Revoke(ctx, tokenID)
}

// AccountDetail loads the account with whichever role profile it carries.
// A missing profile row is not an error.
func (s *AuthService) AccountDetail(ctx context.Context, accountID int64) (*AccountDetail, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	detail := &AccountDetail{Account: account}
	switch account.Role {
	case models.RoleParent:
		profile, err := s.parents.GetByAccountID(ctx, accountID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		detail.ParentProfile = profile
	case models.RoleTutor:
		profile, err := s.tutors.GetByAccountID(ctx, accountID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		detail.TutorProfile = profile
	}

	return detail, nil
}
