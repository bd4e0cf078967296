package organization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"sigil/internal/org/models"
	id "sigil/pkg/domain"
	"sigil/pkg/sentinel"
)

// PostgresStore persists organizations in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateIfSubdomainAvailable persists a new organization. Subdomain
// uniqueness is enforced by a unique index; violations surface as
// sentinel.ErrAlreadyUsed.
func (s *PostgresStore) CreateIfSubdomainAvailable(ctx context.Context, org *models.Organization) error {
	if org == nil {
		return fmt.Errorf("organization is required")
	}
	query := `
		INSERT INTO organizations (
			id, name, subdomain, max_users, max_clients, allow_self_signup,
			session_timeout_seconds, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(org.ID),
		org.Name,
		org.Subdomain,
		org.Settings.MaxUsers,
		org.Settings.MaxClients,
		org.Settings.AllowSelfSignup,
		int64(org.Settings.SessionTimeout.Seconds()),
		string(org.Status),
		org.CreatedAt,
		org.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("subdomain taken: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, org *models.Organization) error {
	if org == nil {
		return fmt.Errorf("organization is required")
	}
	query := `
		UPDATE organizations
		SET name = $2, max_users = $3, max_clients = $4, allow_self_signup = $5,
		    session_timeout_seconds = $6, status = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(org.ID),
		org.Name,
		org.Settings.MaxUsers,
		org.Settings.MaxClients,
		org.Settings.AllowSelfSignup,
		int64(org.Settings.SessionTimeout.Seconds()),
		string(org.Status),
		org.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update organization: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update organization: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, orgID id.OrgID) (*models.Organization, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(orgID))
}

func (s *PostgresStore) FindBySubdomain(ctx context.Context, subdomain string) (*models.Organization, error) {
	return s.findOne(ctx, `WHERE subdomain = $1`, subdomain)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.Organization, error) {
	query := `
		SELECT id, name, subdomain, max_users, max_clients, allow_self_signup,
		       session_timeout_seconds, status, created_at, updated_at
		FROM organizations ` + where

	var (
		orgUUID        uuid.UUID
		org            models.Organization
		timeoutSeconds int64
		status         string
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&orgUUID,
		&org.Name,
		&org.Subdomain,
		&org.Settings.MaxUsers,
		&org.Settings.MaxClients,
		&org.Settings.AllowSelfSignup,
		&timeoutSeconds,
		&status,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find organization: %w", err)
	}
	org.ID = id.OrgID(orgUUID)
	org.Settings.SessionTimeout = time.Duration(timeoutSeconds) * time.Second
	org.Status = models.OrgStatus(status)
	return &org, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
