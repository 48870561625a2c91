package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/praetorian-inc/shapes"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// profileOptions builds the options shared by every column profile. All
// profiles of one run share a single automaton cache.
func profileOptions(log *logrus.Logger) ([]shapes.Option, error) {
	verifier, err := shapes.NewSharedVerifier(settings.GetInt("cache_size"))
	if err != nil {
		return nil, fmt.Errorf("creating verifier: %w", err)
	}
	return []shapes.Option{
		shapes.WithMaxLength(settings.GetInt("max_length")),
		shapes.WithCap(settings.GetInt("cap")),
		shapes.WithFitRatio(settings.GetFloat64("fit_ratio")),
		shapes.WithVerifier(verifier),
		shapes.WithLogger(log),
	}, nil
}

// profileColumns trains one profile per column concurrently. The result
// is index-aligned with cols.
func profileColumns(ctx context.Context, cols []*column, opts []shapes.Option, log *logrus.Logger) ([]*shapes.Profile, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	profiles := make([]*shapes.Profile, len(cols))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, col := range cols {
		g.Go(func() error {
			p := shapes.NewProfile(opts...)
			for _, v := range col.order {
				if err := ctx.Err(); err != nil {
					return err
				}
				p.Track(v, col.counts[v])
			}
			log.WithFields(logrus.Fields{
				"column":    col.name,
				"samples":   p.SamplesSeen(),
				"shapes":    p.StreamCount(),
				"collapsed": p.IsCollapsed(),
			}).Debug("profiled column")
			profiles[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profiles, nil
}
