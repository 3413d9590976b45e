// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package editformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SingleBlock(t *testing.T) {
	response := `Here is the fix:

internal/server/handler.go
<<<<<<< SEARCH
func handle(w http.ResponseWriter) {
    return
}
=======
func handle(w http.ResponseWriter) {
    writeStatus(w)
}
>>>>>>> REPLACE`

	result, err := Parse(response)
	require.NoError(t, err)
	require.Len(t, result.Edits, 1)
	assert.Equal(t, 1, result.BlocksFound)
	assert.Equal(t, 1, result.BlocksParsed)

	ed := result.Edits[0]
	assert.Equal(t, "internal/server/handler.go", ed.Path)
	assert.Equal(t, []string{
		"func handle(w http.ResponseWriter) {",
		"    return",
		"}",
	}, ed.Old)
	assert.Equal(t, []string{
		"func handle(w http.ResponseWriter) {",
		"    writeStatus(w)",
		"}",
	}, ed.New)
	assert.Contains(t, result.ReasoningText, "Here is the fix")
}

func TestParse_MultipleBlocks(t *testing.T) {
	response := `I will update three files:

pkg/types/edit.go
<<<<<<< SEARCH
type EditOperation struct{}
=======
type EditOperation struct {
    Status EditStatus
}
>>>>>>> REPLACE

internal/engine/engine.go
<<<<<<< SEARCH
return nil
=======
return res
>>>>>>> REPLACE

config.yaml
<<<<<<< SEARCH
timeout: 30
=======
timeout: 60
>>>>>>> REPLACE`

	result, err := Parse(response)
	require.NoError(t, err)
	require.Len(t, result.Edits, 3)
	assert.Equal(t, 3, result.BlocksFound)
	assert.Equal(t, 3, result.BlocksParsed)
	assert.Equal(t, "pkg/types/edit.go", result.Edits[0].Path)
	assert.Equal(t, "internal/engine/engine.go", result.Edits[1].Path)
	assert.Equal(t, "config.yaml", result.Edits[2].Path)
	assert.NotEmpty(t, result.ReasoningText)
}

func TestParse_MarkdownFences(t *testing.T) {
	response := "Here is the change:\n\n```\nconfig.yaml\n<<<<<<< SEARCH\ntimeout: 30\n=======\ntimeout: 60\n>>>>>>> REPLACE\n```"

	result, err := Parse(response)
	require.NoError(t, err)
	require.Len(t, result.Edits, 1)
	assert.Equal(t, "config.yaml", result.Edits[0].Path)
	assert.Equal(t, []string{"timeout: 30"}, result.Edits[0].Old)
	assert.Equal(t, []string{"timeout: 60"}, result.Edits[0].New)
}

func TestParse_EmptyReplacementIsDeletion(t *testing.T) {
	response := `file.go
<<<<<<< SEARCH
dead code
=======
>>>>>>> REPLACE`

	result, err := Parse(response)
	require.NoError(t, err)
	require.Len(t, result.Edits, 1)
	assert.Equal(t, []string{"dead code"}, result.Edits[0].Old)
	assert.Empty(t, result.Edits[0].New)
}

func TestParse_EmptySearchIsInsertion(t *testing.T) {
	response := `file.go
<<<<<<< SEARCH
=======
new content
>>>>>>> REPLACE`

	result, err := Parse(response)
	require.NoError(t, err)
	require.Len(t, result.Edits, 1)
	assert.Empty(t, result.Edits[0].Old)
	assert.Equal(t, []string{"new content"}, result.Edits[0].New)
}

func TestParse_MalformedBlock_MissingReplace(t *testing.T) {
	response := `internal/server/handler.go
<<<<<<< SEARCH
return nil
=======
return res`

	result, err := Parse(response)
	require.NoError(t, err)
	assert.Empty(t, result.Edits)
	require.Len(t, result.ParseErrors, 1)
	assert.Contains(t, result.ParseErrors[0].Message, "unclosed block")
	assert.Contains(t, result.ParseErrors[0].RawText, "return nil")
	assert.Greater(t, result.ParseErrors[0].Position, 0)
}

func TestParse_MalformedBlock_MissingDivider(t *testing.T) {
	response := `file.go
<<<<<<< SEARCH
some content`

	result, err := Parse(response)
	require.NoError(t, err)
	assert.Empty(t, result.Edits)
	require.Len(t, result.ParseErrors, 1)
	assert.Contains(t, result.ParseErrors[0].Message, "divider")
}

func TestParse_MissingPath(t *testing.T) {
	response := `<<<<<<< SEARCH
old
=======
new
>>>>>>> REPLACE`

	result, err := Parse(response)
	require.NoError(t, err)
	assert.Empty(t, result.Edits)
	require.Len(t, result.ParseErrors, 1)
	assert.Contains(t, result.ParseErrors[0].Message, "missing file path")
}

func TestParse_InvalidEncodingFailsWholeResponse(t *testing.T) {
	response := "file.go\n<<<<<<< SEARCH\nbad \xff\xfe bytes\n=======\nnew\n>>>>>>> REPLACE\n" +
		"other.go\n<<<<<<< SEARCH\nfine\n=======\nalso fine\n>>>>>>> REPLACE"

	result, err := Parse(response)
	require.Error(t, err)
	assert.Nil(t, result, "a corrupt edit taints the whole response")

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "encoding")
	assert.Equal(t, 2, perr.Position)
}

func TestParse_EmptyResponse(t *testing.T) {
	_, err := Parse("")
	require.Error(t, err)
	assert.IsType(t, &NoEditsFoundError{}, err)
}

func TestParse_NoBlocks(t *testing.T) {
	_, err := Parse("This is just reasoning text with no edit blocks.")
	require.Error(t, err)
	assert.IsType(t, &NoEditsFoundError{}, err)
}

func TestParse_ReasoningAroundBlocks(t *testing.T) {
	response := `Let me explain the change.

First, we need to update the config:

config.yaml
<<<<<<< SEARCH
timeout: 30
=======
timeout: 60
>>>>>>> REPLACE

And that should fix the issue.`

	result, err := Parse(response)
	require.NoError(t, err)
	assert.Equal(t, 1, result.BlocksFound)
	assert.Contains(t, result.ReasoningText, "explain the change")
	assert.Contains(t, result.ReasoningText, "fix the issue")
}
