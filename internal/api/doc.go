// Package api exposes the verification pipeline over HTTP. Clients submit a
// post URL and watch progress either as a newline-delimited JSON stream or
// over a WebSocket; the final report closes the stream.
package api
