// Package landcover provides a synthetic Earth-observation dataset of
// multispectral scenes with per-scene land-cover class labels and binary
// cover masks. Every sample is a deterministic function of its index, so
// training runs over it are reproducible without downloads or on-disk state.
package landcover
