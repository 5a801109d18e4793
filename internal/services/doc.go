// Package services defines shared utilities consumed by the pipeline
// orchestrator and the external collaborator clients.
//
// Key responsibilities:
//   - Context helpers that stamp workflow keys, step names, claim indexes,
//     and correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that tag failures with a
//     stable kind, so the orchestrator can surface a human-readable message
//     and a machine-readable code without string matching.
//
// Use these helpers when wiring new collaborators so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
