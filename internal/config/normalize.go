package config

import "strings"

func (c *Config) normalize() {
	c.Paths.DataDir = expandPath(c.Paths.DataDir)
	c.Paths.MediaDir = expandPath(c.Paths.MediaDir)
	c.Paths.LogDir = expandPath(c.Paths.LogDir)
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))

	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	c.Cache.RedisAddr = strings.TrimSpace(c.Cache.RedisAddr)

	c.Pipeline.TranscriptPolicy = strings.ToLower(strings.TrimSpace(c.Pipeline.TranscriptPolicy))
	if c.Pipeline.ClaimWorkers <= 0 {
		c.Pipeline.ClaimWorkers = defaultClaimWorkers
	}

	c.Retrieval.SearxURL = strings.TrimSpace(c.Retrieval.SearxURL)
	c.Retrieval.Region = strings.TrimSpace(c.Retrieval.Region)
	if c.Retrieval.Region == "" {
		c.Retrieval.Region = defaultSearchRegion
	}
	if c.Retrieval.FetchWorkers <= 0 {
		c.Retrieval.FetchWorkers = defaultFetchWorkers
	}
	if c.Retrieval.FetchTimeout <= 0 {
		c.Retrieval.FetchTimeout = defaultFetchTimeout
	}
	if c.Retrieval.MaxResults <= 0 {
		c.Retrieval.MaxResults = defaultMaxResults
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = defaultTopK
	}
	if c.Retrieval.SnippetLength <= 0 {
		c.Retrieval.SnippetLength = defaultSnippetLength
	}

	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)

	c.Embeddings.APIKey = strings.TrimSpace(c.Embeddings.APIKey)
	c.Embeddings.BaseURL = strings.TrimSpace(c.Embeddings.BaseURL)
	c.Embeddings.Model = strings.TrimSpace(c.Embeddings.Model)

	c.Transcriber.URL = strings.TrimSpace(c.Transcriber.URL)
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Media.DownloadTimeout <= 0 {
		c.Media.DownloadTimeout = defaultDownloadTimeout
	}
}
