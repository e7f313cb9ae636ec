package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/gatehouse/gatehouse/testing"
)

// The guard package's init sets GATEHOUSE_TEST_MODE before any test runs, so
// binaries wired through InTestMode refuse to start inside test binaries.
func TestGuardEnablesTestMode(t *testing.T) {
	require.Equal(t, "1", os.Getenv("GATEHOUSE_TEST_MODE"))
	RefreshTestMode()
	assert.True(t, InTestMode())
}

func TestRefreshTestModeTracksEnvironment(t *testing.T) {
	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	assert.False(t, InTestMode())

	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())
}
