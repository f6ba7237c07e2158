package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv_fallbacks(t *testing.T) {
	t.Setenv("TC_STR", "")
	t.Setenv("TC_INT", "nope")
	t.Setenv("TC_UINT", "-3")
	t.Setenv("TC_BOOL", "maybe")

	assert.Equal(t, "dflt", GetEnv("TC_STR", "dflt"))
	assert.Equal(t, 7, GetEnvInt("TC_INT", 7))
	assert.Equal(t, uint32(2), GetEnvUint("TC_UINT", 2))
	assert.True(t, GetEnvBool("TC_BOOL", true))
}

func TestGetEnv_values(t *testing.T) {
	t.Setenv("TC_INT", "42")
	t.Setenv("TC_UINT", "5")

	assert.Equal(t, 42, GetEnvInt("TC_INT", 0))
	assert.Equal(t, uint32(5), GetEnvUint("TC_UINT", 0))

	for in, want := range map[string]bool{"1": true, "TRUE": true, "yes": true, "no": false, "false": false} {
		t.Setenv("TC_BOOL", in)
		assert.Equal(t, want, GetEnvBool("TC_BOOL", !want), in)
	}
}

func TestLoad_reads_dotenv_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TC_FROM_FILE=hello\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TC_FROM_FILE") })

	require.NoError(t, Load(path))
	assert.Equal(t, "hello", GetEnv("TC_FROM_FILE", ""))
}

func TestLoad_missing_file(t *testing.T) {
	assert.Error(t, Load(filepath.Join(t.TempDir(), "absent.env")))
}
