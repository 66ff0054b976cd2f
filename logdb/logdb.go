// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"strings"

	"github.com/holiman/uint256"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/halvening/log"
	"github.com/vechain/halvening/pool"
	"github.com/vechain/halvening/types"
)

var logger = log.WithContext("pkg", "logdb")

// LogDB stores pool events in sqlite.
type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

var _ pool.EventSink = (*LogDB)(nil)

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	if path == ":memory:" {
		// every connection would see its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create event table")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("log db opened", "path", path, "sqlite", driverVer)
	return &LogDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

func (db *LogDB) Close() error {
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// Write inserts events in one transaction.
func (db *LogDB) Write(events ...*pool.Event) (err error) {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	stmt, err := tx.Prepare("INSERT INTO event(pool, kind, participant, class, amount, time, rewardPerUnit) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		var participant []byte
		if !ev.Participant.IsZero() {
			participant = ev.Participant.Bytes()
		}
		if _, err = stmt.Exec(
			ev.Pool,
			string(ev.Kind),
			participant,
			ev.Class,
			decimal(ev.Amount),
			ev.Time,
			decimal(ev.RewardPerUnit),
		); err != nil {
			return errors.Wrap(err, "insert event")
		}
	}
	return tx.Commit()
}

func decimal(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

// FilterEvents returns the events matching filter, all of them when filter is nil.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT * FROM event ORDER BY seq ASC")
	}
	var args []any
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Pool != "" {
		args = append(args, filter.Pool)
		stmt += " AND pool = ?"
	}
	if filter.Participant != nil {
		args = append(args, filter.Participant.Bytes())
		stmt += " AND participant = ?"
	}
	if len(filter.Kinds) > 0 {
		stmt += " AND kind IN (" + strings.TrimSuffix(strings.Repeat("?,", len(filter.Kinds)), ",") + ")"
		for _, k := range filter.Kinds {
			args = append(args, string(k))
		}
	}
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND time >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND time <= ?"
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			seq           uint64
			poolName      string
			kind          string
			participant   []byte
			class         uint64
			amount        string
			time          uint64
			rewardPerUnit string
		)
		if err := rows.Scan(&seq, &poolName, &kind, &participant, &class, &amount, &time, &rewardPerUnit); err != nil {
			return nil, err
		}
		ev := &pool.Event{
			Pool:        poolName,
			Kind:        pool.EventKind(kind),
			Participant: types.BytesToAddress(participant),
			Class:       class,
			Time:        time,
		}
		if ev.Amount, err = uint256.FromDecimal(amount); err != nil {
			return nil, errors.Wrapf(err, "event %d amount", seq)
		}
		if ev.RewardPerUnit, err = uint256.FromDecimal(rewardPerUnit); err != nil {
			return nil, errors.Wrapf(err, "event %d reward per unit", seq)
		}
		events = append(events, &Event{Seq: seq, Event: ev})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
