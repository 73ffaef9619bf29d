package tui_test

import (
	"testing"

	"github.com/nix-mox/moxlint/internal/adapters/outbound/tui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDiff(t *testing.T) {
	diff, err := tui.RenderDiff("scripts/a.nu", "print x  \nok\n", "print x\nok\n")
	require.NoError(t, err)

	assert.Contains(t, diff, "--- a/scripts/a.nu")
	assert.Contains(t, diff, "+++ b/scripts/a.nu")
	assert.Contains(t, diff, "-print x  \n")
	assert.Contains(t, diff, "+print x\n")
}

func TestRenderDiff_NoChanges(t *testing.T) {
	diff, err := tui.RenderDiff("a.nu", "ok\n", "ok\n")
	require.NoError(t, err)
	assert.Empty(t, diff)
}
