package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SOURCE", "OUTPUT", "POLICY_FILE", "MAX_ITEMS", "FETCH_TIMEOUT", "SOURCE_TABLE"} {
		t.Setenv(key, "")
	}
	t.Setenv("LOG_LEVEL", "error")
}

func TestRunExitCodes(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.json")
	out := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(in, []byte(`[{"name":"Bio Apfel","store":"spar","bio":true}]`), 0o644))

	assert.Equal(t, 0, run([]string{"-s", in, "-o", out}))
	assert.FileExists(t, out)

	assert.Equal(t, 1, run([]string{"-s", filepath.Join(dir, "missing.json"), "-o", out}))
	assert.Equal(t, 2, run([]string{"-m", "0"}))
	assert.Equal(t, 2, run([]string{"-l", "loud"}))
	assert.Equal(t, 0, run([]string{"-h"}))
}
