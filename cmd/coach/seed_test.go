package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCoach(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestSeedCommandIsRepeatable(t *testing.T) {
	t.Setenv("LOG_MODE", "test")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("DEMO_USER_ID", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("SEED_CATALOG_YAML", "")
	dsn := "file:" + filepath.Join(t.TempDir(), "coach.db") + "?_foreign_keys=on"

	const want = "seeded 1 users, 15 scenarios, 8 learning paths\n"
	assert.Equal(t, want, runCoach(t, "seed", "--db-driver", "sqlite", "--dsn", dsn))
	assert.Equal(t, want, runCoach(t, "seed", "--db-driver", "sqlite", "--dsn", dsn))
}
