package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"sigil/internal/client/models"
	id "sigil/pkg/domain"
	"sigil/pkg/sentinel"
)

// PostgresStore persists OAuth clients in PostgreSQL. The redirect-URI set
// and scope list are stored as JSON arrays; the (organization_id, client_id)
// unique index serializes concurrent registrations of the same slug.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Client) error {
	if c == nil {
		return fmt.Errorf("client is required")
	}
	redirectURIs, err := json.Marshal(c.RedirectURIValues())
	if err != nil {
		return fmt.Errorf("marshal redirect uris: %w", err)
	}
	allowedScopes, err := json.Marshal(c.AllowedScopes())
	if err != nil {
		return fmt.Errorf("marshal allowed scopes: %w", err)
	}

	query := `
		INSERT INTO clients (
			id, organization_id, owner_id, client_id, display_name, client_type,
			secret_hash, redirect_uris, allowed_scopes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(c.ID),
		nullOrgID(c.OrgID),
		uuid.UUID(c.OwnerID),
		c.ClientID,
		c.DisplayName,
		string(c.Type),
		nullString(secretHash(c)),
		redirectURIs,
		allowedScopes,
		c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("client_id taken: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, c *models.Client) error {
	if c == nil {
		return fmt.Errorf("client is required")
	}
	redirectURIs, err := json.Marshal(c.RedirectURIValues())
	if err != nil {
		return fmt.Errorf("marshal redirect uris: %w", err)
	}
	allowedScopes, err := json.Marshal(c.AllowedScopes())
	if err != nil {
		return fmt.Errorf("marshal allowed scopes: %w", err)
	}

	query := `
		UPDATE clients
		SET organization_id = $2, display_name = $3, secret_hash = $4,
		    redirect_uris = $5, allowed_scopes = $6
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(c.ID),
		nullOrgID(c.OrgID),
		c.DisplayName,
		nullString(secretHash(c)),
		redirectURIs,
		allowedScopes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("client_id taken: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("update client: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, clientID id.ClientID) (*models.Client, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(clientID))
}

func (s *PostgresStore) FindByOrgAndID(ctx context.Context, orgID id.OrgID, clientID id.ClientID) (*models.Client, error) {
	return s.findOne(ctx, `WHERE organization_id = $1 AND id = $2`, uuid.UUID(orgID), uuid.UUID(clientID))
}

func (s *PostgresStore) FindByOrgAndClientID(ctx context.Context, orgID id.OrgID, slug string) (*models.Client, error) {
	return s.findOne(ctx, `WHERE organization_id = $1 AND client_id = $2`, uuid.UUID(orgID), slug)
}

func (s *PostgresStore) CountByOrg(ctx context.Context, orgID id.OrgID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clients WHERE organization_id = $1`, uuid.UUID(orgID),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Delete(ctx context.Context, clientID id.ClientID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, uuid.UUID(clientID))
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) findOne(ctx context.Context, where string, args ...any) (*models.Client, error) {
	query := `
		SELECT id, organization_id, owner_id, client_id, display_name, client_type,
		       secret_hash, redirect_uris, allowed_scopes, created_at
		FROM clients ` + where

	var (
		clientUUID  uuid.UUID
		orgUUID     uuid.NullUUID
		ownerUUID   uuid.UUID
		slug        string
		displayName string
		clientType  string
		hash        sql.NullString
		redirectRaw []byte
		scopesRaw   []byte
		createdAt   sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&clientUUID,
		&orgUUID,
		&ownerUUID,
		&slug,
		&displayName,
		&clientType,
		&hash,
		&redirectRaw,
		&scopesRaw,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}

	var redirectURIs []string
	if err := json.Unmarshal(redirectRaw, &redirectURIs); err != nil {
		return nil, fmt.Errorf("unmarshal redirect uris: %w", err)
	}
	var scopes []string
	if err := json.Unmarshal(scopesRaw, &scopes); err != nil {
		return nil, fmt.Errorf("unmarshal allowed scopes: %w", err)
	}

	var orgID id.OrgID
	if orgUUID.Valid {
		orgID = id.OrgID(orgUUID.UUID)
	}
	return models.Rehydrate(
		id.ClientID(clientUUID),
		orgID,
		id.UserID(ownerUUID),
		slug,
		displayName,
		models.ClientType(clientType),
		hash.String,
		redirectURIs,
		scopes,
		createdAt.Time,
	), nil
}

func secretHash(c *models.Client) string {
	if secret, ok := c.Secret(); ok {
		return secret.Value()
	}
	return ""
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullOrgID maps the unassigned-organization state to NULL so the partial
// unique index on (organization_id, client_id) ignores legacy rows.
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
