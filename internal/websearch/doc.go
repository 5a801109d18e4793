// Package websearch implements evidence retrieval for claims: query
// optimization, web search, and concurrent page fetching with markup
// stripping. The ranking of fetched documents lives in internal/ranking.
package websearch
