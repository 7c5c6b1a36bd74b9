package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestShortAndFull ensures the rendered strings stay consistent with each other.
func TestShortAndFull(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
	require.Contains(t, Full(), Commit)
}
