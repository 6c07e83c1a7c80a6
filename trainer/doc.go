// Package trainer provides the reference training-loop driver for tasks. It
// owns the epoch/step loop, optimizer stepping, checkpointing and metric
// logging; tasks only supply compute-step results per call, so any other
// driver honoring the task contract can replace it.
package trainer
