// Package io reads persistence diagrams and point clouds from disk and writes
// vectorization results.
//
// # Diagram Input
//
// JSON files hold either arrays keyed by dimension, in Euclidean units:
//
//	{
//	  "dim0": [[0, 1.2, 4], [0, null, 0]],
//	  "dim1": [[0.8, 1.1, 17]]
//	}
//
// or the raw output of a homology engine, a list indexed by dimension whose
// values are squared radii:
//
//	[[{"birth": 0, "death": 1.44, "data": 4}], [[0.64, 1.21, 17]]]
//
// The raw form is always square-rooted on import. The keyed form is
// square-rooted only when the caller says it is raw. A pair is [birth, death]
// or [birth, death, data]; a null death marks an essential class.
//
// CSV files have one pair per row with columns dim, birth, death and an
// optional data tag. A header row is allowed.
//
// # Cloud Input
//
// Point clouds are read from .xyz files (atom count, comment line, then
// "El x y z" rows) or from JSON {"coords": [[x, y, z], ...], "weights": [...]}.
// Any other extension fails with UNSUPPORTED_FILE_TYPE.
//
// # Results
//
// [WriteResult] encodes diagrams, images and the bounds used:
//
//	{
//	  "diagrams": {"dim0": [[b, d, tag], ...], ...},
//	  "images": [[[...row...], ...], ...],
//	  "specs": [{"maxB": 2.1, "maxP": 1.3, "minBD": 0}, ...]
//	}
//
// [ReadResult] reads the same document back. [WritePNG] renders a single
// image as a colour-mapped PNG.
package io
