// Package persim turns persistence diagrams into persistence images.
//
// A persistence image is a fixed-size grid obtained by reparameterizing a
// diagram to (birth, persistence) coordinates, placing a weighted Gaussian on
// every point, and integrating the resulting surface over each pixel.
// Images of equal shape can be fed to any vector-based learning method.
//
// # Pipeline
//
//  1. [diagram.ToLandscape] maps (birth, death) to (birth, death-birth).
//  2. [EstimateSpecs] derives the image domain, unless [Specs] are supplied.
//  3. [Rasterizer.Rasterize] integrates the kernel over every pixel.
//
// # Usage
//
//	r, err := persim.New(persim.Options{
//	    Pixels:    [2]int{20, 20},
//	    Spread:    1,
//	    Weighting: persim.WeightingLinear,
//	})
//	if err != nil {
//	    return err
//	}
//	img, err := r.RasterizeOne(diagram.ToLandscape(d), nil)
//
// To compare several diagrams, rasterize them together so they share one
// domain:
//
//	images, specs, err := r.RasterizeBatch(ctx, landscapes, nil)
//
// A Rasterizer holds only immutable configuration and can be shared between
// goroutines.
package persim
