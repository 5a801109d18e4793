// Package progress carries ordered status events from the pipeline to
// whoever is watching a verification run.
//
// Events are purely observational: reporters never influence pipeline state,
// and a slow or disconnected observer must never crash or stall a run. The
// orchestrator is parameterized by a Reporter, so the same control flow
// serves console output, an HTTP/WebSocket stream, or silence.
package progress
