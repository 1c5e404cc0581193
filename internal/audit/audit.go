// Package audit records CLI command invocations with enough environment
// context to reconstruct what a command saw, without ever exposing secret
// values. Secrets appear in the log only as "set" or "unset".
package audit

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// secretEnvKeys names environment variables whose values must never reach a
// log line.
var secretEnvKeys = map[string]bool{
	"ANTHROPIC_API_KEY":   true,
	"OPENAI_API_KEY":      true,
	"GOOGLE_API_KEY":      true,
	"EMBEDDING_API_KEY":   true,
	"QDRANT_API_KEY":      true,
	"SUPPORT_API_KEY":     true,
	"LANGFUSE_PUBLIC_KEY": true,
	"LANGFUSE_SECRET_KEY": true,
}

// auditKeys is the fixed, ordered set of environment variables recorded with
// every command start. Secret-ness is decided by secretEnvKeys.
var auditKeys = []string{
	"MODEL_PROVIDER",
	"ANTHROPIC_API_KEY",
	"ANTHROPIC_MODEL",
	"OPENAI_API_KEY",
	"OPENAI_MODEL",
	"OLLAMA_HOST",
	"OLLAMA_MODEL",
	"GOOGLE_API_KEY",
	"GEMINI_MODEL",
	"EMBEDDING_PROVIDER",
	"EMBEDDING_MODEL",
	"EMBEDDING_API_KEY",
	"QDRANT_HOST",
	"QDRANT_PORT",
	"QDRANT_PREFIX",
	"QDRANT_API_KEY",
	"RETRIEVAL_PER_KEYWORD_LIMIT",
	"RETRIEVAL_RESULT_LIMIT",
	"SUPPORT_API_KEY",
	"SUPPORT_HISTORY_DB",
	"LOG_LEVEL",
	"LOG_FORMAT",
	"LANGFUSE_PUBLIC_KEY",
	"LANGFUSE_SECRET_KEY",
}

// LogCommandStart emits one structured entry as a CLI command begins: the
// command name, which config file (if any) was loaded, and the sanitised
// operational environment.
func LogCommandStart(log *slog.Logger, command string, configPath string) {
	attrs := make([]slog.Attr, 0, len(auditKeys)+2)
	attrs = append(attrs,
		slog.String("command", command),
		slog.String("config_file", sanitiseConfigPath(configPath)),
	)
	for _, key := range auditKeys {
		attrs = append(attrs, slog.String(key, SanitiseKey(key, os.Getenv(key))))
	}
	log.LogAttrs(context.TODO(), slog.LevelInfo, "audit: command start", attrs...)
}

// SanitiseKey renders an env var value safely for logging: secrets collapse
// to "set"/"unset", everything else passes through ("unset" when empty).
func SanitiseKey(key, value string) string {
	if secretEnvKeys[key] {
		return presence(value)
	}
	return valOrUnset(value)
}

func presence(v string) string {
	if v != "" {
		return "set"
	}
	return "unset"
}

func valOrUnset(v string) string {
	if v != "" {
		return v
	}
	return "unset"
}

// sanitiseConfigPath reports "none" for no config file and folds the home
// directory down to "~" so logs do not leak usernames.
func sanitiseConfigPath(p string) string {
	if p == "" {
		return "none"
	}
	if home, err := os.UserHomeDir(); err == nil && strings.HasPrefix(p, home) {
		return "~" + p[len(home):]
	}
	return p
}
