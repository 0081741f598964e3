package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drawroom/internal/models"
	"drawroom/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS rooms (
	id         SERIAL PRIMARY KEY,
	slug       TEXT NOT NULL UNIQUE,
	admin_id   TEXT NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS chats (
	id         BIGSERIAL PRIMARY KEY,
	room_id    TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	message    TEXT NOT NULL,
	event_id   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS chats_room_id_id_idx ON chats (room_id, id DESC);
`

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(ctx context.Context, databaseURL string, pingTimeout time.Duration) (*PostgresDB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("connected to database")
	return &PostgresDB{pool: pool}, nil
}

// Migrate creates the tables if they do not exist yet.
func (db *PostgresDB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

// User Repository Implementation
func (db *PostgresDB) CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, email, name, created_at`

	user := &models.User{PasswordHash: passwordHash}
	err := db.pool.QueryRow(ctx, query, uuid.NewString(), email, name, passwordHash).Scan(
		&user.ID, &user.Email, &user.Name, &user.CreatedAt,
	)
	if err != nil {
		return nil, wrapError("create user", err)
	}
	return user, nil
}

func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, name, password_hash, created_at FROM users WHERE email = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		return nil, wrapError("get user by email", err)
	}
	return user, nil
}

// Room Repository Implementation
func (db *PostgresDB) CreateRoom(ctx context.Context, slug, adminID string) (*models.Room, error) {
	query := `
		INSERT INTO rooms (slug, admin_id, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, slug, admin_id, created_at`

	room := &models.Room{}
	err := db.pool.QueryRow(ctx, query, slug, adminID).Scan(
		&room.ID, &room.Slug, &room.AdminID, &room.CreatedAt,
	)
	if err != nil {
		return nil, wrapError("create room", err)
	}
	return room, nil
}

func (db *PostgresDB) GetRoomBySlug(ctx context.Context, slug string) (*models.Room, error) {
	query := `SELECT id, slug, admin_id, created_at FROM rooms WHERE slug = $1`

	room := &models.Room{}
	err := db.pool.QueryRow(ctx, query, slug).Scan(
		&room.ID, &room.Slug, &room.AdminID, &room.CreatedAt,
	)
	if err != nil {
		return nil, wrapError("get room by slug", err)
	}
	return room, nil
}

// Chat Repository Implementation
func (db *PostgresDB) SaveChat(ctx context.Context, chat *models.Chat) error {
	query := `
		INSERT INTO chats (room_id, user_id, message, event_id, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`

	err := db.pool.QueryRow(ctx, query, string(chat.RoomID), chat.UserID, chat.Message, chat.EventID).Scan(
		&chat.ID, &chat.CreatedAt,
	)
	return wrapError("save chat", err)
}

func (db *PostgresDB) ListRecentChats(ctx context.Context, roomID models.RoomID, limit int) ([]*models.Chat, error) {
	query := `
		SELECT id, room_id, user_id, message, event_id, created_at
		FROM chats
		WHERE room_id = $1
		ORDER BY id DESC
		LIMIT $2`

	rows, err := db.pool.Query(ctx, query, string(roomID), limit)
	if err != nil {
		return nil, wrapError("list recent chats", err)
	}
	defer rows.Close()

	var chats []*models.Chat
	for rows.Next() {
		chat := &models.Chat{}
		var room string
		if err := rows.Scan(&chat.ID, &room, &chat.UserID, &chat.Message, &chat.EventID, &chat.CreatedAt); err != nil {
			return nil, wrapError("scan chat", err)
		}
		chat.RoomID = models.RoomID(room)
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list recent chats", err)
	}

	// Reverse to replay oldest first
	for i, j := 0, len(chats)-1; i < j; i, j = i+1, j-1 {
		chats[i], chats[j] = chats[j], chats[i]
	}

	return chats, nil
}

func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}
