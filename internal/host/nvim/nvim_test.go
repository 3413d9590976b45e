// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package nvim

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestMatchesPath(t *testing.T) {
	assert.True(t, matchesPath("/home/user/repo/internal/app/main.go", "internal/app/main.go"))
	assert.True(t, matchesPath("main.go", "main.go"))
	assert.False(t, matchesPath("/home/user/repo/other/main.go", "app/main.go"))
	assert.False(t, matchesPath("", "main.go"))
	// A bare suffix without a path boundary is a different file.
	assert.False(t, matchesPath("mymain.go", "main.go"))
}

func TestByteLineConversion(t *testing.T) {
	lines := []string{"alpha", "", "gamma"}

	raw := toByteLines(lines)
	assert.Equal(t, [][]byte{[]byte("alpha"), []byte(""), []byte("gamma")}, raw)
	assert.Equal(t, lines, fromByteLines(raw))
}

func TestByteLineConversion_Empty(t *testing.T) {
	assert.Empty(t, toByteLines(nil))
	assert.Empty(t, fromByteLines(nil))
}

func TestConnect_NoAddress(t *testing.T) {
	t.Setenv("NVIM_LISTEN_ADDRESS", "")

	_, err := Connect("", zerolog.Nop())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "NVIM_LISTEN_ADDRESS")
}
