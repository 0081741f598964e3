package main

import (
	"testing"

	"drawroom/internal/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRect(t *testing.T) {
	r, err := parseRect("10, 10,5,5.5")
	require.NoError(t, err)
	assert.Equal(t, scene.Rectangle{X: 10, Y: 10, Width: 5, Height: 5.5}, r)

	for _, bad := range []string{"", "1,2,3", "1,2,3,x"} {
		_, err := parseRect(bad)
		assert.Error(t, err, bad)
	}
}
