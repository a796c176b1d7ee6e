package discovery

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"divescore-backend/lib/scrapers/divemeets"
	"divescore-backend/services/divers"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("divescore.services.discovery")

const defaultWorkers = 8

// Prober sweeps a numeric id range against the results site and runs
// the full fetch pipeline for every id that turns out to be a diver
// with recorded statistics.
type Prober struct {
	scraper *divemeets.Client
	service divers.Service
	workers int
}

type ProberOptions struct {
	// number of concurrent probe workers, defaults to 8
	Workers int
}

func NewProber(scraper *divemeets.Client, service divers.Service, opts ProberOptions) Prober {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return Prober{
		scraper: scraper,
		service: service,
		workers: workers,
	}
}

type ProbeStats struct {
	Probed  int
	Created int
	Skipped int
	Failed  int
}

// Probe checks every id in [start, end]. Ids with a persisted record
// are skipped outright, ids whose profile page carries no dive
// statistics are ignored, request failures are counted and skipped.
// Worker errors never stop the sweep.
func (p Prober) Probe(ctx context.Context, start, end int) (ProbeStats, error) {
	ctx, span := tracer.Start(ctx, "prober:Probe")
	defer span.End()
	span.SetAttributes(
		attribute.Int("start", start),
		attribute.Int("end", end),
		attribute.Int("workers", p.workers),
	)

	if start > end {
		return ProbeStats{}, errors.New("probe range start exceeds end")
	}

	ids := make(chan string)
	go func() {
		defer close(ids)
		for i := start; i <= end; i++ {
			select {
			case ids <- strconv.Itoa(i):
			case <-ctx.Done():
				return
			}
		}
	}()

	stats := ProbeStats{}
	statsLock := sync.Mutex{}
	wg := sync.WaitGroup{}

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for number := range ids {
				outcome := p.probeOne(ctx, number)

				statsLock.Lock()
				stats.Probed++
				switch outcome {
				case probeCreated:
					stats.Created++
				case probeSkipped:
					stats.Skipped++
				case probeFailed:
					stats.Failed++
				}
				statsLock.Unlock()
			}
		}()
	}

	wg.Wait()

	slog.InfoContext(
		ctx, "probe sweep finished",
		"probed", stats.Probed,
		"created", stats.Created,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	return stats, ctx.Err()
}

type probeOutcome int

const (
	probeSkipped probeOutcome = iota
	probeCreated
	probeFailed
)

func (p Prober) probeOne(ctx context.Context, number string) probeOutcome {
	exists, err := p.service.Store().Exists(ctx, number)
	if err != nil {
		slog.WarnContext(ctx, "existence check failed", "number", number, "err", err)
		return probeFailed
	}
	if exists {
		return probeSkipped
	}

	html, err := p.scraper.FetchProfile(ctx, number)
	if err != nil {
		slog.WarnContext(ctx, "probe request failed", "number", number, "err", err)
		return probeFailed
	}
	if !divemeets.HasDiveStatistics(html) {
		return probeSkipped
	}

	_, err = p.service.CreateDiver(ctx, number)
	if err != nil {
		slog.WarnContext(ctx, "pipeline failed for probed diver", "number", number, "err", err)
		return probeFailed
	}
	return probeCreated
}
