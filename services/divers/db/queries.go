package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Diver struct {
	Number     string
	Name       string
	Gender     string
	Age        string
	Scoreboard string
	Rankings   string
	CreatedAt  int64
}

const diverExists = `
SELECT EXISTS(SELECT 1 FROM divers WHERE number = ?)
`

func (q *Queries) DiverExists(ctx context.Context, number string) (bool, error) {
	row := q.db.QueryRowContext(ctx, diverExists, number)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const getDiver = `
SELECT number, name, gender, age, scoreboard, rankings, created_at
FROM divers WHERE number = ?
`

func (q *Queries) GetDiver(ctx context.Context, number string) (Diver, error) {
	row := q.db.QueryRowContext(ctx, getDiver, number)
	var d Diver
	err := row.Scan(
		&d.Number,
		&d.Name,
		&d.Gender,
		&d.Age,
		&d.Scoreboard,
		&d.Rankings,
		&d.CreatedAt,
	)
	return d, err
}

const listDivers = `
SELECT number, name, gender, age, scoreboard, rankings, created_at
FROM divers ORDER BY number
`

func (q *Queries) ListDivers(ctx context.Context) ([]Diver, error) {
	rows, err := q.db.QueryContext(ctx, listDivers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var divers []Diver
	for rows.Next() {
		var d Diver
		err := rows.Scan(
			&d.Number,
			&d.Name,
			&d.Gender,
			&d.Age,
			&d.Scoreboard,
			&d.Rankings,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		divers = append(divers, d)
	}
	return divers, rows.Err()
}

const upsertDiver = `
INSERT INTO divers (number, name, gender, age, scoreboard, rankings, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (number) DO UPDATE SET
    name = excluded.name,
    gender = excluded.gender,
    age = excluded.age,
    scoreboard = excluded.scoreboard,
    rankings = excluded.rankings,
    created_at = excluded.created_at
`

func (q *Queries) UpsertDiver(ctx context.Context, d Diver) error {
	_, err := q.db.ExecContext(ctx, upsertDiver,
		d.Number,
		d.Name,
		d.Gender,
		d.Age,
		d.Scoreboard,
		d.Rankings,
		d.CreatedAt,
	)
	return err
}

const updateRankings = `
UPDATE divers SET rankings = ? WHERE number = ?
`

func (q *Queries) UpdateRankings(ctx context.Context, number, rankings string) error {
	_, err := q.db.ExecContext(ctx, updateRankings, rankings, number)
	return err
}
