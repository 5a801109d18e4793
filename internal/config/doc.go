// Package config loads and validates reelcheck's TOML configuration.
//
// Configuration resolves from an explicit path, $REELCHECK_CONFIG, or
// ~/.config/reelcheck/config.toml, falling back to built-in defaults when no
// file exists. Values are normalized (tilde expansion, trimmed strings) and
// validated before anything else starts, so the rest of the program can trust
// the Config it receives.
package config
