package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "modernc.org/sqlite"             // sqlite driver
)

type dialect struct {
	driver      string
	schema      string
	placeholder func(n int) string
	timeArg     func(t time.Time) any
}

var postgresDialect = dialect{
	driver: "pgx",
	schema: `
create table if not exists math_problems (
  id                  bigserial primary key,
  user_id             text not null,
  created_at          timestamptz not null,
  problem_description text,
  solution            text not null,
  steps_json          text not null,
  answer              text not null,
  processing_time     double precision not null,
  engine              text not null default '',
  model               text not null default ''
);
create index if not exists math_problems_user_ts on math_problems (user_id, created_at desc);`,
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	timeArg:     func(t time.Time) any { return t },
}

// sqlite keeps created_at as unix nanoseconds so ordering is exact.
var sqliteDialect = dialect{
	driver: "sqlite",
	schema: `
create table if not exists math_problems (
  id                  integer primary key autoincrement,
  user_id             text not null,
  created_at          integer not null,
  problem_description text,
  solution            text not null,
  steps_json          text not null,
  answer              text not null,
  processing_time     real not null,
  engine              text not null default '',
  model               text not null default ''
);
create index if not exists math_problems_user_ts on math_problems (user_id, created_at desc);`,
	placeholder: func(n int) string { return "?" + strconv.Itoa(n) },
	timeArg:     func(t time.Time) any { return t.UnixNano() },
}

// SQLStore keeps history in a math_problems table (Postgres or SQLite).
type SQLStore struct {
	DB  *sql.DB
	d   dialect
	now func() time.Time
}

// OpenPostgres connects through the pgx stdlib driver and ensures the schema.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)
	return newSQLStore(ctx, db, postgresDialect)
}

// OpenSQLite opens (or creates) a SQLite database file. ":memory:" works for tests.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open(sqliteDialect.driver, path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	// a single connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)
	return newSQLStore(ctx, db, sqliteDialect)
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLStore{DB: db, d: d, now: time.Now}, nil
}

func (s *SQLStore) Save(ctx context.Context, rec Record) (string, error) {
	steps, err := json.Marshal(rec.Steps)
	if err != nil {
		return "", err
	}
	p := s.d.placeholder
	q := `
insert into math_problems (
  user_id, created_at, problem_description, solution, steps_json,
  answer, processing_time, engine, model
) values (` + p(1) + `,` + p(2) + `,` + p(3) + `,` + p(4) + `,` + p(5) + `,` +
		p(6) + `,` + p(7) + `,` + p(8) + `,` + p(9) + `)
returning id`

	var id int64
	err = s.DB.QueryRowContext(ctx, q,
		rec.UserID, s.d.timeArg(s.now().UTC()), rec.ProblemDescription, rec.Solution, string(steps),
		rec.Answer, rec.ProcessingTime, rec.Engine, rec.Model,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *SQLStore) ListByUser(ctx context.Context, userID string, limit int) ([]Record, error) {
	q := `
select id, user_id, created_at, problem_description, solution, steps_json,
       answer, processing_time, engine, model
from math_problems
where user_id = ` + s.d.placeholder(1) + `
order by created_at desc, id desc
limit ` + s.d.placeholder(2)

	rows, err := s.DB.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		var (
			id    int64
			ts    any
			desc  sql.NullString
			steps string
			rec   Record
		)
		if err := rows.Scan(&id, &rec.UserID, &ts, &desc, &rec.Solution, &steps,
			&rec.Answer, &rec.ProcessingTime, &rec.Engine, &rec.Model); err != nil {
			return nil, err
		}
		rec.ID = strconv.FormatInt(id, 10)
		if rec.Timestamp, err = scanTime(ts); err != nil {
			return nil, err
		}
		if desc.Valid {
			rec.ProblemDescription = &desc.String
		}
		if err := json.Unmarshal([]byte(steps), &rec.Steps); err != nil {
			return nil, fmt.Errorf("record %d: bad steps json: %w", id, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLStore) Close() error { return s.DB.Close() }

func scanTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case int64:
		return time.Unix(0, t).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}
