package config

const (
	defaultDataDir          = "~/.local/share/reelcheck"
	defaultMediaDir         = "~/.local/share/reelcheck/media"
	defaultLogDir           = "~/.local/share/reelcheck/logs"
	defaultAPIBind          = "127.0.0.1:8591"
	defaultLogLevel         = "info"
	defaultLogFormat        = "console"
	defaultCacheBackend     = CacheBackendSQLite
	defaultTranscriptPolicy = TranscriptRequire
	defaultClaimWorkers     = 1
	defaultSearxURL         = "http://127.0.0.1:8080/search"
	defaultSearchRegion     = "en-US"
	defaultFetchWorkers     = 4
	defaultFetchTimeout     = 10
	defaultMaxResults       = 10
	defaultTopK             = 5
	defaultSnippetLength    = 1000
	defaultLLMBaseURL       = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel         = "google/gemini-2.5-flash"
	defaultLLMTimeout       = 60
	defaultEmbedBaseURL     = "http://127.0.0.1:8081/v1/embeddings"
	defaultEmbedModel       = "all-MiniLM-L6-v2"
	defaultEmbedTimeout     = 30
	defaultTranscriberURL   = "http://127.0.0.1:9000/asr"
	defaultTranscriberWait  = 300
	defaultFFmpegBinary     = "ffmpeg"
	defaultDownloadTimeout  = 120
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			MediaDir: defaultMediaDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Cache: Cache{
			Backend: defaultCacheBackend,
		},
		Pipeline: Pipeline{
			TranscriptPolicy: defaultTranscriptPolicy,
			ClaimWorkers:     defaultClaimWorkers,
		},
		Retrieval: Retrieval{
			SearxURL:      defaultSearxURL,
			Region:        defaultSearchRegion,
			FetchWorkers:  defaultFetchWorkers,
			FetchTimeout:  defaultFetchTimeout,
			MaxResults:    defaultMaxResults,
			TopK:          defaultTopK,
			SnippetLength: defaultSnippetLength,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Embeddings: Embeddings{
			BaseURL:        defaultEmbedBaseURL,
			Model:          defaultEmbedModel,
			TimeoutSeconds: defaultEmbedTimeout,
		},
		Transcriber: Transcriber{
			URL:            defaultTranscriberURL,
			TimeoutSeconds: defaultTranscriberWait,
		},
		Media: Media{
			FFmpegBinary:    defaultFFmpegBinary,
			DownloadTimeout: defaultDownloadTimeout,
		},
	}
}
