// Package verify holds the domain types shared across the verification
// pipeline: extracted claims, ranked web evidence, per-claim findings, and
// the final report returned to callers.
package verify
