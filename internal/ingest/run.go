package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/vetting-tracker/constants"
	"github.com/joseph-ayodele/vetting-tracker/internal/async"
)

// Source is one drop folder and the kind of document placed in it.
type Source struct {
	Dir  string
	Kind constants.DocumentKind
}

// Run watches every source and enqueues each new file until ctx is done.
func Run(ctx context.Context, sources []Source, debounce time.Duration, q async.Queue, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	g, ctx := errgroup.WithContext(ctx)
	started := 0
	for _, src := range sources {
		if strings.TrimSpace(src.Dir) == "" {
			continue
		}
		events, errs, err := StartWatcher(ctx, WatchConfig{
			Roots:       []string{src.Dir},
			InitialScan: true,
			Debounce:    debounce,
		}, logger)
		if err != nil {
			return err
		}
		started++
		log := logger.With("dir", src.Dir, "kind", src.Kind)
		log.Info("ingest.watch.start")

		g.Go(func() error {
			for path := range events {
				if err := q.Enqueue(ctx, async.Job{Path: path, Kind: src.Kind}); err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, async.ErrQueueClosed) {
						return nil
					}
					log.Warn("ingest.enqueue.failed", "path", path, "error", err)
				}
			}
			return nil
		})
		g.Go(func() error {
			for err := range errs {
				log.Warn("ingest.watch.error", "error", err)
			}
			return nil
		})
	}
	if started == 0 {
		return errors.New("no watch folders configured")
	}
	return g.Wait()
}
