// Package model provides the data structures shared between the pipeline
// package and its options. It defines the stage descriptor, per-stage run
// statistics, and the option hooks invoked while a pipeline is built and run.
package model
