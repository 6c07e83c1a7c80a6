// Package main provides a demo program for training a land-cover mask
// segmenter. This example shows the segmentation task defaults in use:
// binary cross entropy on logits, intersection-over-union reporting and
// sigmoid predictions over the synthetic landcover scenes.
package main
