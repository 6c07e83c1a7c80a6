// Package main provides a demo program for running inference with a trained
// land-cover classifier: it loads saved weights, predicts over the synthetic
// scenes and reports the accuracy.
package main
