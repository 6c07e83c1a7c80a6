// Package main provides a demo program for training a land-cover scene
// classifier. This example shows how to bundle a model, a loss, metrics and
// a field mapping into a classification task and drive it with the reference
// trainer over the synthetic landcover scenes.
package main
