// Package pipeline provides the pipeline execution core: stage
// identifier validation with whitelist enforcement, pipeline
// description parsing, and the sequential executor with
// continue/halt semantics.
package pipeline
