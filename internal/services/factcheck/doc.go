// Package factcheck holds the three model-backed collaborators of the
// verification pipeline: the claim extractor, the per-claim verifier, and
// the verdict synthesizer.
package factcheck
