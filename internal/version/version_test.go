package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	v, c, d := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })

	Version, Commit, Date = "v1.2.0", "", ""
	require.Equal(t, "v1.2.0", String())

	Commit = "abc1234"
	require.Equal(t, "v1.2.0 (abc1234)", String())

	Date = "2025-03-01"
	require.Equal(t, "v1.2.0 (abc1234) built 2025-03-01", String())
}
