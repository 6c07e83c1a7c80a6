// Package task implements the trainable Task unit: a model, a loss, a named
// metric set and an input/output field mapping bundled behind the uniform
// forward/compute-step/configure-optimization contract a generic
// training-loop driver expects. The task owns no training state; gradients,
// optimizer stepping, checkpointing and logging sinks belong to the driver.
package task
