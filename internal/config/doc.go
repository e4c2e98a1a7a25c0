// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. It exposes strongly typed settings to the
// rest of the application. Per-call provider secrets are deliberately not part
// of this package; they are resolved fresh on every request by internal/secrets.
package config
