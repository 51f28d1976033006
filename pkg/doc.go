// Package pkg provides the core libraries for moltda persistence image
// vectorization.
//
// # Overview
//
// moltda turns persistence diagrams of molecular point clouds into persistence
// images: fixed-size grids that vector-based learning methods can consume. The
// pkg directory is organized into three areas:
//
//  1. Core - diagrams, landscapes and rasterization ([diagram], [persim])
//  2. Plumbing - file formats, clouds, external engines ([io], [cloud], [homology])
//  3. Infrastructure - caching, storage, metrics, HTTP ([cache], [store],
//     [observability], [api], [config], [pipeline])
//
// # Architecture
//
// The typical data flow:
//
//	point cloud (.xyz / .json)
//	         ↓
//	    [homology] engine (squared filtration values)
//	         ↓
//	    [diagram] ToArrays (Euclidean units) → ToLandscape (birth, persistence)
//	         ↓
//	    [persim] EstimateSpecs → Rasterizer
//	         ↓
//	    JSON / CSV / PNG output ([io])
//
// # Quick Start
//
//	arrays, _ := io.ImportDiagrams("water.json", false)
//	r, _ := persim.New(persim.DefaultOptions())
//	images, specs, _ := r.RasterizeDimensions(ctx, arrays, []int{0, 1, 2}, nil)
//
// For cached runs with rendered artifacts, use [pipeline.Runner].
//
// # Main Packages
//
// [diagram] - Persistence pairs, per-dimension diagrams keyed "dim<N>", the
// square-root conversion from engine output and the landscape transform.
//
// [persim] - Bounds estimation, weighting policies, the Gaussian kernel and the
// rasterizer. Batches share one domain so images are comparable.
//
// [io] - Diagram and cloud readers, result JSON, diagram CSV and PNG heatmaps.
//
// [homology] - Adapter for an external homology engine run as a subprocess.
//
// [pipeline] - Load, vectorize and render with caching, used by CLI and API.
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// [store] - File and MongoDB stores for saved results.
//
// [api] - HTTP handlers for vectorization and stored results.
package pkg
