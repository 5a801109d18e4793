// Package pipeline runs the verification workflow for a post URL: resolve
// the link, fetch media, transcribe, extract claims, gather and verify
// evidence per claim, and synthesize a verdict.
//
// Each deterministic step consults the durable step cache before running,
// so a re-run after a crash or transient failure resumes where the previous
// attempt stopped instead of repeating completed work. Evidence gathering
// and verification are recomputed each run unless evidence caching is
// enabled in configuration.
package pipeline
