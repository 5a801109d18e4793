// Package llm wraps the OpenRouter-compatible chat completion API used for
// claim extraction, verification, verdict synthesis, and optional query
// optimization. The client retries transient failures with exponential
// backoff and tolerates the formatting quirks of JSON-mode responses.
package llm
