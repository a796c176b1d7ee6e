package divers

import (
	"context"
	"database/sql"
	"testing"

	"divescore-backend/lib/scrapers/divemeets"
	"divescore-backend/services/divers/db"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	database, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	database.SetMaxOpenConns(1)
	_, err = database.Exec(db.Schema)
	require.NoError(t, err)
	return database
}

func fixtureRecord(t *testing.T, number string) Record {
	scoreboard := buildScoreboard(t, fixtureResults())
	return Record{
		Profile: divemeets.Profile{
			Number: number,
			Name:   "Jane Doe",
			Gender: "F",
			Age:    "17",
		},
		Events:   scoreboard,
		Rankings: Rank(scoreboard),
	}
}

func TestStoreRoundtrip(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()

	exists, err := store.Exists(ctx, "32577")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = store.Load(ctx, "32577")
	require.ErrorIs(t, err, ErrRecordNotFound)

	record := fixtureRecord(t, "32577")
	require.NoError(t, store.Save(ctx, record))

	exists, err = store.Exists(ctx, "32577")
	require.NoError(t, err)
	require.True(t, exists)

	loaded, err := store.Load(ctx, "32577")
	require.NoError(t, err)
	require.Equal(t, record.Profile, loaded.Profile)
	require.Equal(t, record.Rankings, loaded.Rankings)
	require.Equal(t,
		record.Events["1 Meter"][DirectionFront].Dives["103B"].AverageScore,
		loaded.Events["1 Meter"][DirectionFront].Dives["103B"].AverageScore,
	)
}

func TestStoreSaveOverwrites(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()

	record := fixtureRecord(t, "32577")
	require.NoError(t, store.Save(ctx, record))

	record.Profile.Age = "18"
	require.NoError(t, store.Save(ctx, record))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "18", records[0].Profile.Age)
}

func TestStoreRecomputeAll(t *testing.T) {
	database := openTestDB(t)
	store := NewStore(database)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, fixtureRecord(t, "32577")))
	require.NoError(t, store.Save(ctx, fixtureRecord(t, "10001")))

	var before db.Diver
	row := database.QueryRow("SELECT scoreboard, rankings FROM divers WHERE number = ?", "32577")
	require.NoError(t, row.Scan(&before.Scoreboard, &before.Rankings))

	stats, err := store.RecomputeAll(ctx)
	require.NoError(t, err)
	require.Equal(t, RecomputeStats{Updated: 2, Skipped: 0}, stats)

	// the rerank pass must not touch the scoreboard column, and a
	// rerank over an unchanged scoreboard yields the same summary
	var after db.Diver
	row = database.QueryRow("SELECT scoreboard, rankings FROM divers WHERE number = ?", "32577")
	require.NoError(t, row.Scan(&after.Scoreboard, &after.Rankings))
	require.Equal(t, before.Scoreboard, after.Scoreboard)
	require.Equal(t, before.Rankings, after.Rankings)
}

func TestStoreRecomputeSkipsMalformed(t *testing.T) {
	database := openTestDB(t)
	store := NewStore(database)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, fixtureRecord(t, "32577")))
	_, err := database.Exec(
		"INSERT INTO divers (number, name, gender, age, scoreboard, rankings, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		"666", "Broken Row", "M", "20", "{not json", "{}", 0,
	)
	require.NoError(t, err)

	stats, err := store.RecomputeAll(ctx)
	require.NoError(t, err)
	require.Equal(t, RecomputeStats{Updated: 1, Skipped: 1}, stats)

	// List tolerates the same row the rerank skipped
	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "32577", records[0].Profile.Number)
}
