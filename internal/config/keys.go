package config

import (
	"errors"
	"os"
	"strings"
)

var (
	// ErrNoAPIKey is returned when no Anthropic API key is configured.
	ErrNoAPIKey = errors.New("no Anthropic API key configured")
	// ErrNoGitHubToken is returned when no GitHub token is configured.
	ErrNoGitHubToken = errors.New("no GitHub token configured")
)

// Secret names a credential by the environment variable that overrides it.
type Secret string

const (
	SecretAPIKey        Secret = "ANTHROPIC_API_KEY"
	SecretGitHubToken   Secret = "GITHUB_TOKEN"
	SecretWebhookSecret Secret = "GITHUB_WEBHOOK_SECRET"
)

// Secrets lists every credential devteam reads.
var Secrets = []Secret{SecretAPIKey, SecretGitHubToken, SecretWebhookSecret}

// KeySource represents where a secret was loaded from.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

func configured(cfg *Config, s Secret) string {
	if cfg == nil {
		return ""
	}
	switch s {
	case SecretAPIKey:
		return cfg.Anthropic.APIKey
	case SecretGitHubToken:
		return cfg.GitHub.Token
	case SecretWebhookSecret:
		return cfg.GitHub.WebhookSecret
	}
	return ""
}

// Resolve returns secret s and where it came from: the environment first,
// then the config file. Unexpanded ${VAR} references count as unset.
func Resolve(cfg *Config, s Secret) (string, KeySource) {
	if v := os.Getenv(string(s)); v != "" {
		return v, KeySourceEnv
	}
	if v := os.ExpandEnv(configured(cfg, s)); v != "" && !strings.HasPrefix(v, "${") {
		return v, KeySourceConfig
	}
	return "", KeySourceNone
}

// SourceOf reports where secret s would be loaded from.
func SourceOf(cfg *Config, s Secret) KeySource {
	_, src := Resolve(cfg, s)
	return src
}

// GetAPIKey returns the Anthropic API key.
func GetAPIKey(cfg *Config) (string, error) {
	if key, _ := Resolve(cfg, SecretAPIKey); key != "" {
		return key, nil
	}
	return "", ErrNoAPIKey
}

// GetGitHubToken returns the GitHub token.
func GetGitHubToken(cfg *Config) (string, error) {
	if token, _ := Resolve(cfg, SecretGitHubToken); token != "" {
		return token, nil
	}
	return "", ErrNoGitHubToken
}

// GetAPIKeySource returns where the API key was sourced from.
func GetAPIKeySource(cfg *Config) KeySource {
	return SourceOf(cfg, SecretAPIKey)
}

// ValidateAPIKey checks the format of an Anthropic key without calling the API.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}
	if !strings.HasPrefix(key, "sk-ant-") {
		return errors.New("invalid API key format: expected 'sk-ant-' prefix")
	}
	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}
	return nil
}

// githubTokenPrefixes are the prefixes of classic, fine-grained, OAuth and app tokens.
var githubTokenPrefixes = []string{"ghp_", "github_pat_", "gho_", "ghu_", "ghs_"}

// ValidateGitHubToken checks the format of a GitHub token.
func ValidateGitHubToken(token string) error {
	if token == "" {
		return ErrNoGitHubToken
	}
	for _, p := range githubTokenPrefixes {
		if strings.HasPrefix(token, p) {
			if len(token) < len(p)+20 {
				return errors.New("invalid GitHub token format: token too short")
			}
			return nil
		}
	}
	return errors.New("invalid GitHub token format: unknown prefix")
}

// MaskAPIKey shows the "sk-ant-" prefix and last four characters of a key.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 15 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// MaskSecret hides everything but the last four characters of a token.
func MaskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return "***" + secret[len(secret)-4:]
}
