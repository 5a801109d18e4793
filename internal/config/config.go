package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	MediaDir string `toml:"media_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Logging controls log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Cache selects and tunes the durable step cache backend.
type Cache struct {
	Backend       string `toml:"backend"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Evidence      bool   `toml:"cache_evidence"`
}

// Pipeline contains orchestration policy knobs.
type Pipeline struct {
	TranscriptPolicy string `toml:"transcript_policy"`
	ClaimWorkers     int    `toml:"claim_workers"`
}

// Retrieval tunes the web evidence sub-pipeline. Region is a BCP 47 locale
// ("en-US", "pt-BR") steering the search provider's region.
type Retrieval struct {
	SearxURL      string `toml:"searx_url"`
	Region        string `toml:"region"`
	FetchWorkers  int    `toml:"fetch_workers"`
	FetchTimeout  int    `toml:"fetch_timeout"`
	MaxResults    int    `toml:"max_results"`
	TopK          int    `toml:"top_k"`
	SnippetLength int    `toml:"snippet_length"`
	LLMOptimizer  bool   `toml:"llm_optimizer"`
}

// LLM contains shared chat-completion connection settings used by the query
// optimizer, claim extractor, claim verifier, and verdict synthesizer.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Embeddings configures the sentence embedding backend used for ranking.
type Embeddings struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Transcriber configures the speech-to-text service.
type Transcriber struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Media configures video download and audio extraction.
type Media struct {
	FFmpegBinary    string `toml:"ffmpeg_binary"`
	DownloadTimeout int    `toml:"download_timeout"`
}

// Config is the root configuration object.
type Config struct {
	Paths       Paths       `toml:"paths"`
	Logging     Logging     `toml:"logging"`
	Cache       Cache       `toml:"cache"`
	Pipeline    Pipeline    `toml:"pipeline"`
	Retrieval   Retrieval   `toml:"retrieval"`
	LLM         LLM         `toml:"llm"`
	Embeddings  Embeddings  `toml:"embeddings"`
	Transcriber Transcriber `toml:"transcriber"`
	Media       Media       `toml:"media"`
}

// Transcript policies.
const (
	TranscriptRequire = "require"
	TranscriptCaption = "caption"
)

// Cache backends.
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
)

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	return expandPath("~/.config/reelcheck/config.toml")
}

// Load reads configuration from path (or the default locations when path is
// empty). It returns the parsed config, the path that was consulted, and
// whether a file was actually found; defaults are used when none exists.
func Load(path string) (*Config, string, bool, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		resolved = strings.TrimSpace(os.Getenv("REELCHECK_CONFIG"))
	}
	if resolved == "" {
		resolved = DefaultPath()
	}
	resolved = expandPath(resolved)

	cfg := Default()
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg.normalize()
			if vErr := cfg.Validate(); vErr != nil {
				return nil, resolved, false, vErr
			}
			return &cfg, resolved, false, nil
		}
		return nil, resolved, false, fmt.Errorf("read config %s: %w", resolved, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, resolved, true, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, resolved, true, err
	}
	return &cfg, resolved, true, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// clobber an existing file.
func WriteSample(path string) error {
	path = expandPath(strings.TrimSpace(path))
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the directories the daemon writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.MediaDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/"))
}
