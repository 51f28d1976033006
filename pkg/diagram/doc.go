// Package diagram holds persistence diagrams and their array and landscape
// forms.
//
// A homology engine emits one diagram per dimension, with birth and death
// measured in filtration units. For alpha complexes those units are squared
// radii, and [ToArrays] takes square roots to return to Euclidean scale,
// keyed "dim0", "dim1", ... for direct lookup:
//
//	arrays, err := diagram.ToArrays(raw)
//	if err != nil {
//	    return err
//	}
//	loops := diagram.ToLandscape(arrays.Dim(1))
//
// [ToLandscape] reparameterizes (birth, death) as (birth, persistence), the
// coordinates the persistence image is built on. It always returns a copy.
//
// # JSON
//
// [Pair] encodes as a [birth, death, data] triple and decodes either that
// triple, a [birth, death] pair, or the engine's {"birth", "death", "data"}
// object. An infinite death is written as null.
package diagram
