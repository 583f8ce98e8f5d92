package random

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLetters(t *testing.T) {
	first, err := Letters(20)
	require.NoError(t, err)
	require.Len(t, first, 20)

	second, err := Letters(20)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
