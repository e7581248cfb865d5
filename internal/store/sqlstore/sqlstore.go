package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/vbonduro/invreg/internal/domain"
	"github.com/vbonduro/invreg/internal/store"
)

// SQLStore keeps records in the inventory table. Every method issues plain
// '?'-placeholder SQL, so it runs unchanged on SQLite and MySQL.
type SQLStore struct {
	db *sql.DB
}

var _ store.Store = (*SQLStore)(nil)

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Create(ctx context.Context, name, description string, photo *string) (*domain.Record, error) {
	if err := store.ValidateCreate(name); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory (name, description, photo) VALUES (?, ?, ?)
	`, name, description, nullString(photo))
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.getByID(ctx, id)
}

func (s *SQLStore) List(ctx context.Context) ([]*domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, photo FROM inventory ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	records := make([]*domain.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*domain.Record, error) {
	n, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.getByID(ctx, n)
}

func (s *SQLStore) Update(ctx context.Context, id string, u domain.RecordUpdate) (*domain.Record, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	n, err := parseID(id)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE inventory
		SET name = COALESCE(?, name), description = COALESCE(?, description)
		WHERE id = ?
	`, nullString(u.Name), nullString(u.Description), n)
	if err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}
	if err := requireRow(result, id); err != nil {
		return nil, err
	}

	return s.getByID(ctx, n)
}

func (s *SQLStore) ReplacePhoto(ctx context.Context, id, photo string) (*domain.Record, error) {
	n, err := parseID(id)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE inventory SET photo = ? WHERE id = ?
	`, photo, n)
	if err != nil {
		return nil, fmt.Errorf("failed to replace photo: %w", err)
	}
	if err := requireRow(result, id); err != nil {
		return nil, err
	}

	return s.getByID(ctx, n)
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM inventory WHERE id = ?
	`, n)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return requireRow(result, id)
}

// Ping reports whether the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) getByID(ctx context.Context, id int64) (*domain.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, photo FROM inventory WHERE id = ?
	`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*domain.Record, error) {
	var (
		id    int64
		photo sql.NullString
		rec   domain.Record
	)
	if err := sc.Scan(&id, &rec.Name, &rec.Description, &photo); err != nil {
		return nil, err
	}
	rec.ID = strconv.FormatInt(id, 10)
	if photo.Valid {
		rec.Photo = &photo.String
	}
	return &rec, nil
}

// parseID maps ids that cannot exist in the table to not-found, matching the
// file store, which treats every unknown id the same way.
func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, notFound(id)
	}
	return n, nil
}

func requireRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound(id)
	}
	return nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func notFound(id string) error {
	return fmt.Errorf("record %q: %w", id, domain.ErrNotFound)
}
