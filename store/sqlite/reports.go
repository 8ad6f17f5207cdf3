// Package sqlite is a Repository backed by a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"

	"github.com/dhamidi/giftlint/diagnose"
	"github.com/dhamidi/giftlint/store"
)

type ReportsDB struct {
	db *sql.DB
}

var _ store.Repository = (*ReportsDB)(nil)

// Open opens or creates the database at file.
func Open(file string) (*ReportsDB, error) {
	repo := &ReportsDB{}

	var err error
	repo.db, err = sql.Open("sqlite", file)
	if err != nil {
		return nil, wrapDBError(err)
	}

	if err := repo.init(); err != nil {
		repo.db.Close()
		return nil, err
	}
	return repo, nil
}

func (repo *ReportsDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS reports (
		id TEXT NOT NULL PRIMARY KEY,
		file TEXT NOT NULL,
		created INTEGER NOT NULL,
		data TEXT NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *ReportsDB) Close() error {
	return repo.db.Close()
}

func (repo *ReportsDB) Create(ctx context.Context, report diagnose.Report) (store.Record, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return store.Record{}, fmt.Errorf("could not generate ID: %w", err)
	}

	data, err := json.Marshal(report)
	if err != nil {
		return store.Record{}, fmt.Errorf("encoding report: %w", err)
	}

	_, err = repo.db.ExecContext(ctx, `INSERT INTO reports (id, file, created, data) VALUES (?, ?, ?, ?);`,
		newUUID.String(),
		report.File,
		time.Now().UnixNano(),
		string(data),
	)
	if err != nil {
		return store.Record{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *ReportsDB) GetByID(ctx context.Context, id uuid.UUID) (store.Record, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT created, data FROM reports WHERE id = ?;`,
		id.String(),
	)

	var created int64
	var data string
	if err := row.Scan(&created, &data); err != nil {
		return store.Record{}, wrapDBError(err)
	}
	return decodeRecord(id, created, data)
}

func (repo *ReportsDB) GetAll(ctx context.Context) ([]store.Record, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, created, data FROM reports ORDER BY created, id;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []store.Record
	for rows.Next() {
		var id string
		var created int64
		var data string
		if err := rows.Scan(&id, &created, &data); err != nil {
			return nil, wrapDBError(err)
		}

		parsed, err := uuid.Parse(id)
		if err != nil {
			return all, fmt.Errorf("stored UUID %q is invalid: %w", id, err)
		}
		rec, err := decodeRecord(parsed, created, data)
		if err != nil {
			return all, err
		}
		all = append(all, rec)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

func (repo *ReportsDB) Delete(ctx context.Context, id uuid.UUID) (store.Record, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?;`, id.String())
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, store.ErrNotFound
	}
	return curVal, nil
}

func decodeRecord(id uuid.UUID, created int64, data string) (store.Record, error) {
	rec := store.Record{
		ID:      id,
		Created: time.Unix(0, created),
	}
	if err := json.Unmarshal([]byte(data), &rec.Report); err != nil {
		return rec, fmt.Errorf("stored report %s is invalid: %w", id, err)
	}
	return rec, nil
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return store.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
