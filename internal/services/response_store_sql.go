package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/AnshRaj112/luna-backend/internal/models"
)

type sqlDialect struct {
	name string
	// numbered placeholders ($1, $2) instead of ?
	numbered bool
	// LIMIT clause meaning "no limit", needed when only OFFSET is given
	noLimit string
}

var (
	postgresDialect = sqlDialect{name: "postgres", numbered: true, noLimit: "ALL"}
	sqliteDialect   = sqlDialect{name: "sqlite", noLimit: "-1"}
)

// rebind rewrites ? placeholders for dialects that number them.
func (d sqlDialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLResponseStore keeps records in the responses table created by the
// database package. Insertion order is the seq column.
type SQLResponseStore struct {
	db      *sql.DB
	dialect sqlDialect
}

// NewPostgresResponseStore uses database.PostgresDB (or any *sql.DB opened with lib/pq).
func NewPostgresResponseStore(ctx context.Context, db *sql.DB) (*SQLResponseStore, error) {
	return newSQLResponseStore(ctx, db, postgresDialect)
}

// NewSQLiteResponseStore uses a database opened by database.OpenSQLite.
func NewSQLiteResponseStore(ctx context.Context, db *sql.DB) (*SQLResponseStore, error) {
	return newSQLResponseStore(ctx, db, sqliteDialect)
}

func newSQLResponseStore(ctx context.Context, db *sql.DB, d sqlDialect) (*SQLResponseStore, error) {
	s := &SQLResponseStore{db: db, dialect: d}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses`).Scan(&count); err != nil {
		return nil, err
	}
	if count == 0 {
		if err := s.insertSeed(ctx); err != nil {
			return nil, err
		}
		log.Printf("✅ Seeded %s responses table", d.name)
	}
	return s, nil
}

const responseColumns = `id, question, answer, model, timestamp, category, feedback`

func scanResponse(row interface{ Scan(...interface{}) error }) (models.Response, error) {
	var r models.Response
	err := row.Scan(&r.ID, &r.Question, &r.Answer, &r.Model, &r.Timestamp, &r.Category, &r.Feedback)
	return r, err
}

func (s *SQLResponseStore) List(ctx context.Context, opts models.ListOptions) ([]models.Response, error) {
	var (
		where []string
		args  []interface{}
	)
	if opts.Category != "" {
		where = append(where, "category = ?")
		args = append(args, opts.Category)
	}
	if opts.Model != "" {
		where = append(where, "model = ?")
		args = append(args, opts.Model)
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		where = append(where, "(LOWER(question) LIKE ? OR LOWER(answer) LIKE ?)")
		like := "%" + strings.ToLower(q) + "%"
		args = append(args, like, like)
	}

	query := `SELECT ` + responseColumns + ` FROM responses`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if opts.Filtered() {
		query += ` ORDER BY seq DESC`
	} else {
		query += ` ORDER BY seq ASC`
	}
	switch {
	case opts.Limit > 0:
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	case opts.Offset > 0:
		query += ` LIMIT ` + s.dialect.noLimit
	}
	if opts.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Response{}
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLResponseStore) Get(ctx context.Context, id string) (*models.Response, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(`SELECT `+responseColumns+` FROM responses WHERE id = ?`), id)
	r, err := scanResponse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *SQLResponseStore) Create(ctx context.Context, r models.Response) (*models.Response, error) {
	r, err := PrepareNewResponse(r)
	if err != nil {
		return nil, err
	}
	if err := s.insert(ctx, s.db, r); err != nil {
		return nil, err
	}
	return &r, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *SQLResponseStore) insert(ctx context.Context, db execer, r models.Response) error {
	_, err := db.ExecContext(ctx, s.dialect.rebind(`
		INSERT INTO responses (`+responseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), r.ID, r.Question, r.Answer, r.Model, r.Timestamp, r.Category, r.Feedback)
	return err
}

func (s *SQLResponseStore) Update(ctx context.Context, id string, patch models.ResponsePatch) (*models.Response, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, s.dialect.rebind(`SELECT `+responseColumns+` FROM responses WHERE id = ?`), id)
	r, err := scanResponse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	patch.Apply(&r)

	_, err = tx.ExecContext(ctx, s.dialect.rebind(`
		UPDATE responses
		SET question = ?, answer = ?, model = ?, timestamp = ?, category = ?, feedback = ?
		WHERE id = ?
	`), r.Question, r.Answer, r.Model, r.Timestamp, r.Category, r.Feedback, r.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLResponseStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(`DELETE FROM responses WHERE id = ?`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLResponseStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM responses`); err != nil {
		return err
	}
	return s.insertSeed(ctx)
}

func (s *SQLResponseStore) insertSeed(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, r := range SeedResponses() {
		if err := s.insert(ctx, tx, r); err != nil {
			return err
		}
	}
	return tx.Commit()
}
