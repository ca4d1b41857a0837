// Copyright 2023 The go-sdw Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package framedb archives decode sessions and their flagged frames
// to the swan database.
package framedb // import "github.com/go-sdw/swan/framedb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/go-sdw/swan/sdw"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// Session describes one decode run over a capture.
type Session struct {
	ID      int64
	Capture string // capture name or path
	Rows    int    // frame rows at lock
	Columns int    // frame columns at lock
}

// FrameRow is one archived frame.
type FrameRow struct {
	Session int64
	Start   uint64
	End     uint64
	Ctrl    uint64
	Flags   uint8
}

// Frame returns the archived frame as a decoded frame.
func (row FrameRow) Frame() sdw.Frame {
	return sdw.Frame{
		Start: row.Start,
		End:   row.End,
		Ctrl:  row.Ctrl,
		Flags: row.Flags,
	}
}

// DB exposes convenience methods to store and retrieve decode
// sessions from the swan database.
type DB struct {
	db   *sql.DB
	name string // name of the swan database
}

// Open opens a connection to the swan database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("framedb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		return nil, fmt.Errorf("framedb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("framedb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// AddSession records a new decode session and returns its ID.
func (db *DB) AddSession(ctx context.Context, capture string, rows, columns int) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := db.db.ExecContext(
		ctx,
		"INSERT INTO sessions (capture, nrows, ncols, datetime) VALUES (?, ?, ?, NOW())",
		capture, rows, columns,
	)
	if err != nil {
		return 0, fmt.Errorf("framedb: could not insert session for %q: %w", capture, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("framedb: could not get session id for %q: %w", capture, err)
	}

	return id, nil
}

// AddFrame archives one frame of a session.
func (db *DB) AddFrame(ctx context.Context, session int64, f sdw.Frame) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := db.db.ExecContext(
		ctx,
		"INSERT INTO frames (session, start_sample, end_sample, ctrl, flags) VALUES (?, ?, ?, ?, ?)",
		session, f.Start, f.End, f.Ctrl, f.Flags,
	)
	if err != nil {
		return fmt.Errorf("framedb: could not insert frame for session %d: %w", session, err)
	}

	return nil
}

// LastSessionID returns the ID of the most recent decode session.
func (db *DB) LastSessionID(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var id int64
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT id FROM sessions ORDER BY datetime DESC LIMIT 1",
	)
	if err != nil {
		return id, fmt.Errorf("framedb: could not query last session: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(&id)
		if err != nil {
			return id, fmt.Errorf("framedb: could not get last session id: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return id, fmt.Errorf("framedb: could not scan db for last session: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return id, fmt.Errorf("framedb: context error while retrieving last session: %w", err)
	}

	return id, nil
}

// Session returns the description of one decode session.
func (db *DB) Session(ctx context.Context, id int64) (Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s := Session{ID: id}
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT capture, nrows, ncols FROM sessions WHERE id = ?",
		id,
	)
	if err != nil {
		return s, fmt.Errorf("framedb: could not query session %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(&s.Capture, &s.Rows, &s.Columns)
		if err != nil {
			return s, fmt.Errorf("framedb: could not scan session %d: %w", id, err)
		}
	}

	if err := rows.Err(); err != nil {
		return s, fmt.Errorf("framedb: could not scan db for session %d: %w", id, err)
	}

	return s, nil
}

// FlaggedFrames returns the frames of a session that carry any flag.
func (db *DB) FlaggedFrames(ctx context.Context, session int64) ([]FrameRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := db.db.QueryContext(
		ctx,
		"SELECT start_sample, end_sample, ctrl, flags FROM frames WHERE session = ? AND flags != 0 ORDER BY start_sample",
		session,
	)
	if err != nil {
		return nil, fmt.Errorf("framedb: could not query flagged frames of session %d: %w", session, err)
	}
	defer rows.Close()

	var frames []FrameRow
	for rows.Next() {
		row := FrameRow{Session: session}
		err = rows.Scan(&row.Start, &row.End, &row.Ctrl, &row.Flags)
		if err != nil {
			return nil, fmt.Errorf("framedb: could not scan frame of session %d: %w", session, err)
		}
		frames = append(frames, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("framedb: could not scan db for frames of session %d: %w", session, err)
	}

	return frames, nil
}
