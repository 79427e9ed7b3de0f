// Package store persists users and their tracked queries in PostgreSQL or SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"spybot/internal/adapters/store/migrations"
	"spybot/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

type SQLStore struct {
	db     *sql.DB
	driver string
}

// Open connects to the database for the given driver name.
func Open(driver, dsn string) (*SQLStore, error) {
	var name string
	switch driver {
	case Postgres:
		name = "pgx"
	case SQLite:
		name = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	return New(db, driver), nil
}

func New(db *sql.DB, driver string) *SQLStore {
	// sqlite allows a single writer, and in-memory databases exist per connection
	if driver == SQLite {
		db.SetMaxOpenConns(1)
	}

	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded goose migrations.
func (s *SQLStore) Migrate(ctx context.Context) error {
	dialect := "pgx"
	if s.driver == SQLite {
		dialect = "sqlite3"
	}

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, s.db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// rebind turns ? placeholders into $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != Postgres {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}

	return sb.String()
}

const selectUser = `SELECT chat_id, status, active, auto_post, language, username, password,
	friend_timeline_id, next_scan FROM users WHERE chat_id = ?`

func (s *SQLStore) FindOrCreateUser(ctx context.Context, chatID int64) (*domain.User, error) {
	var user *domain.User

	err := WithTx(ctx, s.db, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO users (chat_id) VALUES (?) ON CONFLICT (chat_id) DO NOTHING`),
			chatID)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}

		user, err = scanUser(tx.QueryRowContext(ctx, s.rebind(selectUser), chatID))
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u                            domain.User
		lang, username, password     sql.NullString
		friendTimelineID, nextScanAt sql.NullInt64
	)

	err := row.Scan(&u.ChatID, &u.Status, &u.Active, &u.AutoPost, &lang, &username, &password,
		&friendTimelineID, &nextScanAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if lang.Valid {
		u.Language = &lang.String
	}
	u.Username = username.String
	u.Password = password.String
	if friendTimelineID.Valid {
		u.FriendTimelineID = &friendTimelineID.Int64
	}
	if nextScanAt.Valid {
		next := time.Unix(nextScanAt.Int64, 0).UTC()
		u.NextScan = &next
	}

	return &u, nil
}

var updatable = map[domain.Field]bool{
	domain.FieldActive:           true,
	domain.FieldAutoPost:         true,
	domain.FieldLanguage:         true,
	domain.FieldUsername:         true,
	domain.FieldPassword:         true,
	domain.FieldFriendTimelineID: true,
	domain.FieldNextScan:         true,
}

// UpdateUser writes only the given columns. Columns are emitted in sorted order.
func (s *SQLStore) UpdateUser(ctx context.Context, chatID int64, fields domain.Fields) error {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]domain.Field, 0, len(fields))
	for k := range fields {
		if !updatable[k] {
			return fmt.Errorf("unknown user field %q", k)
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	sets := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		sets = append(sets, string(k)+" = ?")

		v := fields[k]
		if t, ok := v.(time.Time); ok {
			v = t.Unix()
		}
		args = append(args, v)
	}
	args = append(args, chatID)

	query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE chat_id = ?"

	result, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (s *SQLStore) AddTrack(ctx context.Context, chatID int64, query string) error {
	return WithTx(ctx, s.db, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO tracks (query) VALUES (?) ON CONFLICT (query) DO NOTHING`),
			query); err != nil {
			return fmt.Errorf("failed to insert track: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			s.rebind(`INSERT INTO user_tracks (chat_id, query) VALUES (?, ?) ON CONFLICT (chat_id, query) DO NOTHING`),
			chatID, query); err != nil {
			return fmt.Errorf("failed to link track: %w", err)
		}

		return nil
	})
}

func (s *SQLStore) RemoveTrack(ctx context.Context, chatID int64, query string) (bool, error) {
	result, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM user_tracks WHERE chat_id = ? AND query = ?`),
		chatID, query)
	if err != nil {
		return false, fmt.Errorf("failed to remove track: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return n > 0, nil
}

func (s *SQLStore) ListTracks(ctx context.Context, chatID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT query FROM user_tracks WHERE chat_id = ? ORDER BY query`),
		chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tracks: %w", err)
	}
	defer rows.Close()

	var tracks []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, q)
	}

	return tracks, rows.Err()
}

func (s *SQLStore) TopTracks(ctx context.Context, limit int) ([]domain.TrackCount, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT query, COUNT(*) AS watchers FROM user_tracks
		GROUP BY query ORDER BY watchers DESC, query LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select top tracks: %w", err)
	}
	defer rows.Close()

	var top []domain.TrackCount
	for rows.Next() {
		var tc domain.TrackCount
		if err := rows.Scan(&tc.Query, &tc.Watchers); err != nil {
			return nil, fmt.Errorf("failed to scan top track: %w", err)
		}
		top = append(top, tc)
	}

	return top, rows.Err()
}

type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...any) {
	log.Fatal().Msgf(strings.TrimSpace(format), v...)
}

func (gooseLogger) Printf(format string, v ...any) {
	log.Info().Str("component", "migrations").Msgf(strings.TrimSpace(format), v...)
}
