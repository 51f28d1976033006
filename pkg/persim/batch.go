package persim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/moltda/pkg/diagram"
	"github.com/matzehuels/moltda/pkg/errors"
)

// DefaultDims are the homology dimensions vectorized when none are given.
var DefaultDims = []int{0, 1, 2, 3}

// RasterizeBatch rasterizes several landscapes over one shared domain.
//
// When specs is nil the bounds are estimated jointly over all landscapes, so
// every image lands on the same physical scale. The specs actually used are
// returned alongside the images, which are in input order. Estimation fails
// with UNDEFINED_BOUNDS when every landscape is empty.
func (r *Rasterizer) RasterizeBatch(ctx context.Context, ls []diagram.Landscape, specs *Specs) ([]Image, Specs, error) {
	s, err := resolveSpecs(specs, ls...)
	if err != nil {
		return nil, Specs{}, err
	}

	images := make([]Image, len(ls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, l := range ls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := r.Rasterize(l, s)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Specs{}, err
	}
	return images, s, nil
}

// RasterizeDimensions converts the requested homology dimensions of arrays
// into images, one per dimension in the order of dims.
//
// specs may be empty (estimate each dimension from its own landscape), hold
// a single entry shared by every dimension, or hold one entry per dimension.
// A nil entry is estimated. A dimension missing from arrays or without
// points yields an all-zero image and zero Specs.
func (r *Rasterizer) RasterizeDimensions(ctx context.Context, arrays diagram.Arrays, dims []int, specs []*Specs) ([]Image, []Specs, error) {
	if len(dims) == 0 {
		dims = DefaultDims
	}
	switch len(specs) {
	case 0, 1, len(dims):
	default:
		return nil, nil, errors.New(errors.ErrCodeInvalidInput,
			"got %d specs for %d dimensions; pass none, one, or one per dimension", len(specs), len(dims))
	}

	for _, dim := range dims {
		if dim < 0 {
			return nil, nil, errors.New(errors.ErrCodeInvalidInput, "dimension must not be negative, got %d", dim)
		}
	}

	images := make([]Image, len(dims))
	used := make([]Specs, len(dims))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, dim := range dims {
		var sp *Specs
		switch len(specs) {
		case 1:
			sp = specs[0]
		case len(dims):
			sp = specs[i]
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			l := diagram.ToLandscape(arrays.Dim(dim))
			if len(l) == 0 {
				images[i] = NewImage(r.Shape())
				if sp != nil {
					used[i] = *sp
				}
				return nil
			}
			s, err := resolveSpecs(sp, l)
			if err != nil {
				return errors.Wrap(errors.GetCode(err), err, "%s", diagram.DimKey(dim))
			}
			img, err := r.Rasterize(l, s)
			if err != nil {
				return errors.Wrap(errors.GetCode(err), err, "%s", diagram.DimKey(dim))
			}
			images[i], used[i] = img, s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return images, used, nil
}
