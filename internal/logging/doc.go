// Package logging builds the slog loggers used across reelcheck and keeps
// structured field names consistent.
//
// Loggers carry workflow key, step, claim index, and request id attributes
// pulled from context so every line emitted during a verification run can be
// correlated. Output is either a human console format or JSON, selected by
// configuration.
package logging
