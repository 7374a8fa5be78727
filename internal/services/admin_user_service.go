package services

import (
	"context"
	"database/sql"
	"time"

	"gearreport/internal/models"
	"gearreport/internal/observability"
	contextutils "gearreport/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// AdminUserServiceInterface defines moderator account operations.
type AdminUserServiceInterface interface {
	AuthenticateUser(ctx context.Context, username, password string) (*models.AdminUser, error)
	GetUserByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	CreateUser(ctx context.Context, username, password, email string) (*models.AdminUser, error)
	ResetPassword(ctx context.Context, username, password string) error
	EnsureAdminUser(ctx context.Context, username, password string) error
	UpdateLastActive(ctx context.Context, userID int) error
}

// AdminUserService implements AdminUserServiceInterface over PostgreSQL.
type AdminUserService struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewAdminUserService creates a new AdminUserService instance.
func NewAdminUserService(db *sql.DB, logger *observability.Logger) *AdminUserService {
	if db == nil {
		panic("NewAdminUserService: db is nil")
	}
	if logger == nil {
		panic("NewAdminUserService: logger is nil")
	}
	return &AdminUserService{db: db, logger: logger}
}

// AuthenticateUser verifies a username and password pair.
// Returns ErrInvalidCredentials for both unknown users and wrong passwords.
func (s *AdminUserService) AuthenticateUser(ctx context.Context, username, password string) (result0 *models.AdminUser, err error) {
	ctx, span := observability.TraceAdminFunction(ctx, "authenticate_user",
		observability.AttributeUsername(username))
	defer observability.FinishSpan(span, &err)

	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		if contextutils.IsError(err, contextutils.ErrRecordNotFound) {
			return nil, contextutils.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, contextutils.ErrInvalidCredentials
	}

	return user, nil
}

// GetUserByUsername fetches a moderator account by username.
func (s *AdminUserService) GetUserByUsername(ctx context.Context, username string) (result0 *models.AdminUser, err error) {
	ctx, span := observability.TraceAdminFunction(ctx, "get_user_by_username",
		observability.AttributeUsername(username))
	defer observability.FinishSpan(span, &err)

	query := `SELECT id, username, password_hash, email, created_at, last_active_at FROM admin_users WHERE username=$1`
	row := s.db.QueryRowContext(ctx, query, username)
	var user models.AdminUser
	err = row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email, &user.CreatedAt, &user.LastActiveAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, contextutils.ErrRecordNotFound
		}
		return nil, contextutils.WrapError(err, "failed to scan admin user")
	}
	return &user, nil
}

// CreateUser creates a moderator account with a bcrypt-hashed password.
func (s *AdminUserService) CreateUser(ctx context.Context, username, password, email string) (result0 *models.AdminUser, err error) {
	ctx, span := observability.TraceAdminFunction(ctx, "create_user",
		observability.AttributeUsername(username))
	defer observability.FinishSpan(span, &err)

	if username == "" || password == "" {
		return nil, contextutils.WrapError(contextutils.ErrMissingRequired, "username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to hash password")
	}

	query := `INSERT INTO admin_users (username, password_hash, email, created_at)
              VALUES ($1,$2,$3,$4) RETURNING id, created_at`
	var user models.AdminUser
	user.Username = username
	user.PasswordHash = string(hash)
	if email != "" {
		user.Email = sql.NullString{String: email, Valid: true}
	}
	err = s.db.QueryRowContext(ctx, query, username, string(hash), email, time.Now()).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to insert admin user")
	}
	return &user, nil
}

// ResetPassword replaces the stored password hash for a moderator account.
func (s *AdminUserService) ResetPassword(ctx context.Context, username, password string) (err error) {
	ctx, span := observability.TraceAdminFunction(ctx, "reset_password",
		observability.AttributeUsername(username))
	defer observability.FinishSpan(span, &err)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return contextutils.WrapError(err, "failed to hash password")
	}

	query := `UPDATE admin_users SET password_hash=$1 WHERE username=$2`
	result, err := s.db.ExecContext(ctx, query, string(hash), username)
	if err != nil {
		return contextutils.WrapError(err, "failed to update password")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return contextutils.WrapError(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "admin user %s not found", username)
	}
	return nil
}

// EnsureAdminUser creates the bootstrap moderator account if it does not
// already exist. Called at server startup with the configured credentials.
func (s *AdminUserService) EnsureAdminUser(ctx context.Context, username, password string) (err error) {
	ctx, span := observability.TraceAdminFunction(ctx, "ensure_admin_user",
		observability.AttributeUsername(username))
	defer observability.FinishSpan(span, &err)

	if username == "" || password == "" {
		s.logger.Warn(ctx, "Admin bootstrap credentials not configured, skipping")
		return nil
	}

	_, err = s.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !contextutils.IsError(err, contextutils.ErrRecordNotFound) {
		return err
	}

	_, err = s.CreateUser(ctx, username, password, "")
	if err != nil {
		return contextutils.WrapError(err, "failed to create bootstrap admin user")
	}
	s.logger.Info(ctx, "Bootstrap admin user created", map[string]interface{}{"username": username})
	return nil
}

// UpdateLastActive stamps the account's last activity time.
func (s *AdminUserService) UpdateLastActive(ctx context.Context, userID int) (err error) {
	ctx, span := observability.TraceAdminFunction(ctx, "update_last_active")
	defer observability.FinishSpan(span, &err)

	query := `UPDATE admin_users SET last_active_at=$1 WHERE id=$2`
	if _, err := s.db.ExecContext(ctx, query, time.Now(), userID); err != nil {
		return contextutils.WrapError(err, "failed to update last active")
	}
	return nil
}
