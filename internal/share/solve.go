package share

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"hashira/internal/ctxlog"
	"hashira/internal/db"
	"hashira/internal/lagrange"
	"hashira/internal/rec"

	"golang.org/x/sync/errgroup"
)

type Result struct {
	Name       string
	Digest     string
	Secret     *big.Int
	N          int
	K          int
	Points     int
	Mismatches []lagrange.Mismatch
}

// Solve decodes the dataset and recovers its secret from the k points with the smallest x.
// Any further points are checked against the recovered polynomial and reported as mismatches.
func Solve(ctx context.Context, ds Dataset) (Result, error) {
	logger := ctxlog.Get(ctx)

	points, err := ds.Points()
	if err != nil {
		return Result{}, err
	}

	if len(points) != ds.Keys.N {
		logger.Warn("point count differs from n", "n", ds.Keys.N, "points", len(points))
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	secret, err := lagrange.Recover(points, ds.Keys.K)
	if err != nil {
		return Result{}, fmt.Errorf("recover: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	mismatches, err := lagrange.Verify(points, ds.Keys.K)
	if err != nil {
		return Result{}, fmt.Errorf("verify: %w", err)
	}
	for _, m := range mismatches {
		logger.Warn("point does not lie on recovered polynomial", "x", m.X.String(), "recorded", m.Want.String(), "expected", m.Have.RatString())
	}

	return Result{
		Digest:     ds.Digest(),
		Secret:     secret,
		N:          ds.Keys.N,
		K:          ds.Keys.K,
		Points:     len(points),
		Mismatches: mismatches,
	}, nil
}

// SolveAll loads and solves every file with at most limit solves running at once.
// Results are returned in the order of files.
func SolveAll(ctx context.Context, files []string, limit int) ([]Result, error) {
	results := make([]Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, file := range files {
		g.Go(rec.Func(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			ctx := ctxlog.With(ctx, "dataset", file)

			ds, err := Load(ctx, file)
			if err != nil {
				return err
			}

			r, err := Solve(ctx, ds)
			if err != nil {
				return fmt.Errorf("solve %q: %w", file, err)
			}
			r.Name = file

			results[i] = r
			return nil
		}))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Record converts r into its stored form.
func (r Result) Record(solvedAt time.Time) db.Record {
	record := db.Record{
		Name:     r.Name,
		Secret:   r.Secret.String(),
		N:        r.N,
		K:        r.K,
		Points:   r.Points,
		SolvedAt: solvedAt,
	}
	for _, m := range r.Mismatches {
		record.Mismatches = append(record.Mismatches, db.Mismatch{
			X:    m.X.String(),
			Want: m.Want.String(),
			Have: m.Have.RatString(),
		})
	}
	return record
}
