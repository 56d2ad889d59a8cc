package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFoldDataRoundtrip(t *testing.T) {
	require := require.New(t)

	fold := &FoldData{
		Operator:  "add",
		Kind:      1,
		Axis:      Stacking,
		Flatten:   false,
		IgnoreNaN: true,
		Chunk:     [][]byte{{1, 2, 3}, {4, 5}},
	}

	data, err := fold.Encode()
	require.NoError(err)

	parsed, err := ParseFoldData(data)
	require.NoError(err)
	require.Equal(fold, parsed)
}

func TestParseFoldDataTrailingGarbage(t *testing.T) {
	require := require.New(t)

	fold := &FoldData{Operator: "add", Kind: 1, Axis: 2}
	data, err := fold.Encode()
	require.NoError(err)

	_, err = ParseFoldData(append(data, 0xff))
	require.Error(err)
}
