package tools

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/agentline/types"
)

func TestRunCmd(t *testing.T) {
	t.Parallel()

	out, err := RunCmd("echo hello")
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "hello", strings.TrimSpace(out.Stdout))
	assert.Empty(t, out.Stderr)
}

func TestRunCmd_NonZeroExit(t *testing.T) {
	t.Parallel()

	out, err := RunCmd("echo oops >&2; exit 3")
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Contains(t, out.Stderr, "oops")
}

func TestRunCmd_MissingBinary(t *testing.T) {
	t.Parallel()

	// The shell starts fine, so a missing binary surfaces as a non-zero
	// exit rather than a spawn failure.
	out, err := RunCmd("definitely-not-a-real-binary-xyz")
	require.NoError(t, err)
	assert.False(t, out.Success)
}

func TestRunCmdInDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	out, err := RunCmdInDir(dir, "pwd")
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, resolved, strings.TrimSpace(out.Stdout))
}

func TestRunCmdInDir_MissingDir(t *testing.T) {
	t.Parallel()

	_, err := RunCmdInDir("/no/such/dir/agentline", "pwd")
	require.Error(t, err)
	assert.True(t, types.IsFailed(err))
	assert.Equal(t, types.ErrToolFailed, types.CodeOf(err))
}
