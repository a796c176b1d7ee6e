package divers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"divescore-backend/lib/scrapers/divemeets"
	"divescore-backend/services/divers/db"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

var ErrRecordNotFound = errors.New("diver record not found")

// Record is the persisted unit: one diver's profile, full scoreboard
// and derived rankings. Saved wholesale, never partially, except for
// the rankings column which the batch recompute pass rewrites alone.
type Record struct {
	Profile  divemeets.Profile `json:"profile"`
	Events   Scoreboard        `json:"events"`
	Rankings RankingSummary    `json:"rankings"`
}

type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

// Exists is the pipeline's idempotency gate: a diver with a persisted
// record is never refetched.
func (s Store) Exists(ctx context.Context, number string) (bool, error) {
	return s.qry.DiverExists(ctx, number)
}

func (s Store) Load(ctx context.Context, number string) (Record, error) {
	row, err := s.qry.GetDiver(ctx, number)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return recordFromRow(row)
}

func recordFromRow(row db.Diver) (Record, error) {
	record := Record{
		Profile: divemeets.Profile{
			Number: row.Number,
			Name:   row.Name,
			Gender: row.Gender,
			Age:    row.Age,
		},
	}
	err := json.Unmarshal([]byte(row.Scoreboard), &record.Events)
	if err != nil {
		return Record{}, fmt.Errorf("decode scoreboard for diver %s: %w", row.Number, err)
	}
	err = json.Unmarshal([]byte(row.Rankings), &record.Rankings)
	if err != nil {
		return Record{}, fmt.Errorf("decode rankings for diver %s: %w", row.Number, err)
	}
	return record, nil
}

// Save overwrites the whole record for the diver in one statement.
func (s Store) Save(ctx context.Context, record Record) error {
	scoreboard, err := json.Marshal(record.Events)
	if err != nil {
		return fmt.Errorf("encode scoreboard for diver %s: %w", record.Profile.Number, err)
	}
	rankings, err := json.Marshal(record.Rankings)
	if err != nil {
		return fmt.Errorf("encode rankings for diver %s: %w", record.Profile.Number, err)
	}

	return s.qry.UpsertDiver(ctx, db.Diver{
		Number:     record.Profile.Number,
		Name:       record.Profile.Name,
		Gender:     record.Profile.Gender,
		Age:        record.Profile.Age,
		Scoreboard: string(scoreboard),
		Rankings:   string(rankings),
		CreatedAt:  time.Now().Unix(),
	})
}

func (s Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.qry.ListDivers(ctx)
	if err != nil {
		return nil, err
	}

	var records []Record
	for _, row := range rows {
		record, err := recordFromRow(row)
		if err != nil {
			slog.WarnContext(ctx, "skipping malformed diver record", "number", row.Number, "err", err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

type RecomputeStats struct {
	Updated int
	Skipped int
}

// RecomputeAll re-derives the ranking summary of every persisted
// record from its stored scoreboard and rewrites only the rankings
// column. Rows whose scoreboard no longer decodes are reported and
// skipped, the batch keeps going.
func (s Store) RecomputeAll(ctx context.Context) (RecomputeStats, error) {
	ctx, span := tracer.Start(ctx, "store:RecomputeAll")
	defer span.End()

	rows, err := s.qry.ListDivers(ctx)
	if err != nil {
		return RecomputeStats{}, err
	}

	var stats RecomputeStats
	for _, row := range rows {
		var scoreboard Scoreboard
		err := json.Unmarshal([]byte(row.Scoreboard), &scoreboard)
		if err != nil {
			slog.WarnContext(
				ctx, "skipping malformed scoreboard during rerank",
				"number", row.Number,
				"err", err,
			)
			stats.Skipped++
			continue
		}

		rankings, err := json.Marshal(Rank(scoreboard))
		if err != nil {
			return stats, fmt.Errorf("encode rankings for diver %s: %w", row.Number, err)
		}
		err = s.qry.UpdateRankings(ctx, row.Number, string(rankings))
		if err != nil {
			return stats, err
		}
		stats.Updated++
	}

	slog.InfoContext(
		ctx, "recomputed rankings",
		"updated", stats.Updated,
		"skipped", stats.Skipped,
	)
	return stats, nil
}
