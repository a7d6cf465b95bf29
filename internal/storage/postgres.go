package storage

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/your-org/partsboard/internal/config"
	"github.com/your-org/partsboard/internal/models"
)

//go:embed schema.sql
var schema string

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the tables if they are missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// --- Sessions ---

func (s *PostgresStore) CreateSession(ctx context.Context, sess *models.Session) error {
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("marshal session user: %w", err)
	}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO sessions (id, token, user_json, ip, expires_at) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		sess.ID, sess.Token, user, sess.IP, sess.ExpiresAt,
	).Scan(&sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession returns a live session. Expired sessions read as not found.
func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	sess := &models.Session{}
	var user []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, token, user_json, ip, created_at, expires_at FROM sessions WHERE id = $1 AND expires_at > now()`, id,
	).Scan(&sess.ID, &sess.Token, &user, &sess.IP, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if err := json.Unmarshal(user, &sess.User); err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	return sess, nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before now.
func (s *PostgresStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// --- Status changes ---

// InsertStatusChange records an accepted update. Redelivered events with an id that
// is already stored are ignored.
func (s *PostgresStore) InsertStatusChange(ctx context.Context, c *models.StatusChange) (bool, error) {
	subparts, err := json.Marshal(c.Subparts)
	if err != nil {
		return false, fmt.Errorf("marshal subparts: %w", err)
	}
	recipients := c.Recipients
	if recipients == nil {
		recipients = []string{}
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO status_changes (id, customer_id, model_id, user_id, person, ip, reason, recipients, subparts, receipt_key, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO NOTHING`,
		c.ID, c.CustomerID, c.ModelID, c.UserID, c.Person, c.IP, c.Reason,
		recipients, subparts, c.ReceiptKey, c.SubmittedAt)
	if err != nil {
		return false, fmt.Errorf("insert status change: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

const statusChangeColumns = `id, customer_id, model_id, user_id, person, ip, reason, recipients, subparts, receipt_key, submitted_at, created_at`

// ListStatusChanges returns the newest changes first, optionally for one model.
func (s *PostgresStore) ListStatusChanges(ctx context.Context, modelID *int64, limit, offset int) ([]models.StatusChange, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	where := ""
	args := []interface{}{}
	if modelID != nil {
		where = "WHERE model_id = $1"
		args = append(args, *modelID)
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM status_changes "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count status changes: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM status_changes %s ORDER BY submitted_at DESC LIMIT $%d OFFSET $%d`,
		statusChangeColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list status changes: %w", err)
	}
	defer rows.Close()

	changes := []models.StatusChange{}
	for rows.Next() {
		c, err := scanStatusChange(rows)
		if err != nil {
			return nil, 0, err
		}
		changes = append(changes, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list status changes: %w", err)
	}
	return changes, total, nil
}

func (s *PostgresStore) GetStatusChange(ctx context.Context, id uuid.UUID) (*models.StatusChange, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+statusChangeColumns+` FROM status_changes WHERE id = $1`, id)
	c, err := scanStatusChange(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func scanStatusChange(row pgx.Row) (*models.StatusChange, error) {
	var c models.StatusChange
	var subparts []byte
	if err := row.Scan(&c.ID, &c.CustomerID, &c.ModelID, &c.UserID, &c.Person, &c.IP, &c.Reason,
		&c.Recipients, &subparts, &c.ReceiptKey, &c.SubmittedAt, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan status change: %w", err)
	}
	if err := json.Unmarshal(subparts, &c.Subparts); err != nil {
		return nil, fmt.Errorf("decode subparts: %w", err)
	}
	return &c, nil
}
