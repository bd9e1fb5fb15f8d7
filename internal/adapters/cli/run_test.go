package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackDispatchCommandResolvesConfigPath(t *testing.T) {
	command, err := fallbackDispatchCommand("configs/config.yaml")
	require.NoError(t, err)

	// The subprocess runs in the exchange directory, so a relative config
	// path would point at the wrong file there.
	_, configArg, found := strings.Cut(command, " --config ")
	require.True(t, found)
	assert.True(t, filepath.IsAbs(configArg))
	assert.True(t, strings.HasSuffix(configArg, filepath.Join("configs", "config.yaml")))
}

func TestFallbackDispatchCommandWithoutConfigPath(t *testing.T) {
	command, err := fallbackDispatchCommand("")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(command, " dispatch"))
	assert.NotContains(t, command, "--config")
}
