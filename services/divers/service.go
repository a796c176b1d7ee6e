package divers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"divescore-backend/lib/scrapers/divemeets"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("divescore.services.divers")

// ErrDiverNotFound means the profile lookup itself came back unusable.
// Distinct from a diver who exists but has no dive history, that one
// produces an empty (and validly graded) record.
var ErrDiverNotFound = errors.New("diver not found")

const defaultMaxConcurrentFetches = 64

type Service struct {
	scraper *divemeets.Client
	store   Store
	dd      *DifficultyTable

	// ceiling on in-flight history requests per diver
	maxConcurrentFetches int
}

type ServiceOptions struct {
	// defaults to 64, roughly the connection pool ceiling the
	// results site tolerates
	MaxConcurrentFetches int
}

func NewService(database *sql.DB, scraper *divemeets.Client, opts ServiceOptions) (Service, error) {
	dd, err := LoadDifficultyTable()
	if err != nil {
		return Service{}, fmt.Errorf("load difficulty table: %w", err)
	}

	maxFetches := opts.MaxConcurrentFetches
	if maxFetches <= 0 {
		maxFetches = defaultMaxConcurrentFetches
	}

	return Service{
		scraper:              scraper,
		store:                NewStore(database),
		dd:                   dd,
		maxConcurrentFetches: maxFetches,
	}, nil
}

func (s Service) Store() Store {
	return s.store
}

// FetchDiver pulls a diver's profile, discovers their recorded
// (dive, height) pairs and fetches every pair's performance history
// concurrently. A failed or empty history fetch contributes nothing
// and never aborts its siblings; the scoreboard is complete once
// every dispatched fetch has returned.
func (s Service) FetchDiver(ctx context.Context, number string) (divemeets.Profile, Scoreboard, error) {
	ctx, span := tracer.Start(ctx, "service:FetchDiver")
	defer span.End()
	span.SetAttributes(attribute.String("diver", number))

	profileHtml, err := s.scraper.FetchProfile(ctx, number)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "profile fetch failed")
		return divemeets.Profile{}, nil, fmt.Errorf("%w: %s: %v", ErrDiverNotFound, number, err)
	}
	if profileHtml == "" {
		span.SetStatus(codes.Error, "profile page empty")
		return divemeets.Profile{}, nil, fmt.Errorf("%w: %s", ErrDiverNotFound, number)
	}

	profile := divemeets.ExtractProfile(profileHtml)
	profile.Number = number

	pairs, err := divemeets.ExtractDiveHeights(profileHtml)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract dive list")
		return divemeets.Profile{}, nil, err
	}
	span.SetAttributes(attribute.Int("dive_height_pairs", len(pairs)))

	scoreboard := Scoreboard{}
	scoreboardLock := sync.Mutex{}
	semaphore := make(chan struct{}, s.maxConcurrentFetches)
	wg := sync.WaitGroup{}

	for _, pair := range pairs {
		wg.Add(1)
		go func(pair divemeets.DiveHeight) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			html, err := s.scraper.FetchDiveHistory(ctx, number, pair.Dive, pair.Height)
			if err != nil {
				slog.WarnContext(
					ctx, "dive history fetch failed",
					"diver", number,
					"dive", pair.Dive,
					"height", pair.Height,
					"err", err,
				)
				return
			}
			entries, err := divemeets.ExtractPerformances(html)
			if err != nil {
				slog.WarnContext(
					ctx, "dive history unparsable",
					"diver", number,
					"dive", pair.Dive,
					"height", pair.Height,
					"err", err,
				)
				return
			}

			scoreboardLock.Lock()
			defer scoreboardLock.Unlock()
			scoreboard.Merge(s.dd, pair.Dive, pair.Height, entries)
		}(pair)
	}

	wg.Wait()
	scoreboard.Finalize()

	return profile, scoreboard, nil
}

// CreateDiver runs the whole pipeline for one diver and persists the
// result, overwriting any previous record.
func (s Service) CreateDiver(ctx context.Context, number string) (Record, error) {
	ctx, span := tracer.Start(ctx, "service:CreateDiver")
	defer span.End()

	profile, scoreboard, err := s.FetchDiver(ctx, number)
	if err != nil {
		return Record{}, err
	}

	record := Record{
		Profile:  profile,
		Events:   scoreboard,
		Rankings: Rank(scoreboard),
	}
	err = s.store.Save(ctx, record)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist record")
		return Record{}, err
	}

	slog.InfoContext(
		ctx, "created diver record",
		"number", number,
		"name", profile.Name,
		"events", len(scoreboard),
	)
	return record, nil
}

// GetOrCreate returns the persisted record when one exists, otherwise
// it runs the pipeline. The existence check is the system's only
// caching layer: all-or-nothing, no freshness semantics.
func (s Service) GetOrCreate(ctx context.Context, number string) (Record, error) {
	exists, err := s.store.Exists(ctx, number)
	if err != nil {
		return Record{}, err
	}
	if exists {
		return s.store.Load(ctx, number)
	}
	return s.CreateDiver(ctx, number)
}
