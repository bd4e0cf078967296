package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"sigil/internal/identity/models"
	id "sigil/pkg/domain"
	"sigil/pkg/sentinel"
)

// PostgresStore persists users in PostgreSQL. Tenant scoping is applied in
// SQL: every organization-scoped query filters on organization_id, and the
// (organization_id, email) unique index serializes concurrent registrations.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is required")
	}
	query := `
		INSERT INTO users (
			id, organization_id, email, password_hash, first_name, last_name,
			is_org_admin, created_at, last_login_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(u.ID),
		nullOrgID(u.OrgID),
		u.Email.Value(),
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.IsOrgAdmin,
		u.CreatedAt,
		u.LastLoginAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email taken: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is required")
	}
	query := `
		UPDATE users
		SET organization_id = $2, first_name = $3, last_name = $4,
		    is_org_admin = $5, last_login_at = $6
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(u.ID),
		nullOrgID(u.OrgID),
		u.FirstName,
		u.LastName,
		u.IsOrgAdmin,
		u.LastLoginAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email taken: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(userID))
}

func (s *PostgresStore) FindByOrgAndID(ctx context.Context, orgID id.OrgID, userID id.UserID) (*models.User, error) {
	return s.findOne(ctx, `WHERE organization_id = $1 AND id = $2`, uuid.UUID(orgID), uuid.UUID(userID))
}

func (s *PostgresStore) FindByOrgAndEmail(ctx context.Context, orgID id.OrgID, email string) (*models.User, error) {
	return s.findOne(ctx, `WHERE organization_id = $1 AND email = $2`, uuid.UUID(orgID), email)
}

func (s *PostgresStore) CountByOrg(ctx context.Context, orgID id.OrgID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE organization_id = $1`, uuid.UUID(orgID),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) findOne(ctx context.Context, where string, args ...any) (*models.User, error) {
	query := `
		SELECT id, organization_id, email, password_hash, first_name, last_name,
		       is_org_admin, created_at, last_login_at
		FROM users ` + where

	var (
		userUUID    uuid.UUID
		orgUUID     uuid.NullUUID
		email       string
		u           models.User
		lastLoginAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&userUUID,
		&orgUUID,
		&email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.IsOrgAdmin,
		&u.CreatedAt,
		&lastLoginAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.ID = id.UserID(userUUID)
	if orgUUID.Valid {
		u.OrgID = id.OrgID(orgUUID.UUID)
	}
	u.Email = models.EmailFromStored(email)
	if lastLoginAt.Valid {
		t := lastLoginAt.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}

// nullOrgID maps the unassigned-organization state to NULL so the partial
// unique index on (organization_id, email) ignores legacy rows.
func nullOrgID(orgID id.OrgID) any {
	if orgID.IsNil() {
		return nil
	}
	return uuid.UUID(orgID)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
