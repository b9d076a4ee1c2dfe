package augment

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Augment produces n variants of img. The unmodified source is not part of
// the result. n == 0 yields an empty slice.
//
// It makes one [Generate] call for all n transforms and then renders one
// variant per transform, in index order, drawing from rng throughout.
func Augment(img *Image, n int, cfg Config, rng Source) ([]*Image, error) {
	plan, err := Plan(img, n, cfg, rng)
	if err != nil {
		return nil, err
	}
	out := make([]*Image, n)
	for i := range out {
		out[i] = Render(img, plan.Transforms[i], plan.Perturbations[i])
	}
	return out, nil
}

// BatchPlan holds every random draw of one batch. Rendering a plan consumes
// no randomness, so its variants can be rendered in any order.
type BatchPlan struct {
	Transforms    TransformBatch
	Perturbations []Perturbation
}

// Plan validates the request and makes all random draws of a batch in the
// same order [Augment] makes them: first every transform, then every
// perturbation.
func Plan(img *Image, n int, cfg Config, rng Source) (*BatchPlan, error) {
	if err := ValidateCount(n); err != nil {
		return nil, err
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	transforms, err := Generate(n, img.Width, img.Height, cfg, rng)
	if err != nil {
		return nil, err
	}
	plan := &BatchPlan{Transforms: transforms, Perturbations: make([]Perturbation, n)}
	for i := range plan.Perturbations {
		plan.Perturbations[i] = DrawPerturbation(cfg, len(img.Pix), rng)
	}
	return plan, nil
}

// Augmenter renders batches on a bounded number of goroutines.
//
// Output is bit-identical to [Augment] for the same inputs.
type Augmenter struct {
	// Workers bounds concurrent renders. Zero means GOMAXPROCS; one renders
	// serially.
	Workers int
}

// Augment is the concurrent counterpart of the package-level [Augment].
// Cancelling ctx stops scheduling further variants and returns ctx.Err();
// no partial batch is ever returned.
func (a Augmenter) Augment(ctx context.Context, img *Image, n int, cfg Config, rng Source) ([]*Image, error) {
	plan, err := Plan(img, n, cfg, rng)
	if err != nil {
		return nil, err
	}

	workers := a.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]*Image, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = Render(img, plan.Transforms[i], plan.Perturbations[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
