// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package llm wraps the AWS Bedrock ConverseStream API: it renders the
// system prompt that teaches the model the search/replace edit format,
// assembles conversation messages, and streams responses with retry and
// usage accounting.
// Implements: prd010-llm-client R1, R2, R3, R4, R5, R6;
//
//	docs/ARCHITECTURE § LLM Client.
package llm

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/petar-djukic/go-edit/pkg/types"

	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// TemplateData holds the values injected into the system prompt template.
type TemplateData struct {
	OS        string
	GoVersion string
}

// RenderSystemPrompt renders the system prompt template with the given data.
// The template spells out the edit block format the parser expects.
//
// Implements: prd010-llm-client R3.1-R3.5.
func RenderSystemPrompt(data TemplateData) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/system.tmpl")
	if err != nil {
		return "", fmt.Errorf("parsing system template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing system template: %w", err)
	}

	return buf.String(), nil
}

// ConstructMessages builds the Bedrock message array from the system
// prompt, the repository context map, file contents, and the user's task.
//
// The order is:
//  1. System prompt (separate field, not in the messages array)
//  2. User message with the repository context map
//  3. User message with file contents (paths and numbered lines)
//  4. User message with the editing task
//
// Implements: prd010-llm-client R2.1-R2.4.
func ConstructMessages(systemPrompt, contextMap string, files []types.FileContent, userPrompt string) ([]brtypes.SystemContentBlock, []brtypes.Message) {
	system := []brtypes.SystemContentBlock{
		&brtypes.SystemContentBlockMemberText{Value: systemPrompt},
	}

	var messages []brtypes.Message

	if contextMap != "" {
		messages = append(messages, userMessage(
			"## Repository Context\n\n"+contextMap,
		))
	}

	if len(files) > 0 {
		var buf strings.Builder
		buf.WriteString("## File Contents\n\n")
		for _, f := range files {
			buf.WriteString(formatFileContent(f))
			buf.WriteString("\n")
		}
		messages = append(messages, userMessage(buf.String()))
	}

	messages = append(messages, userMessage(userPrompt))

	return system, messages
}

// ConstructRetryMessages extends the conversation with the assistant's
// previous response and a follow-up user message carrying feedback. The
// feedback text arrives fully formatted (diagnostics output comes with its
// own preamble), so nothing is prepended here.
//
// Implements: prd010-llm-client R2.5.
func ConstructRetryMessages(prev []brtypes.Message, assistantResponse, feedback string) []brtypes.Message {
	messages := append(prev, assistantMessage(assistantResponse))
	return append(messages, userMessage(feedback))
}

// formatFileContent renders a file with a path header and numbered lines.
func formatFileContent(f types.FileContent) string {
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("### %s\n\n", f.Path))

	for i, line := range strings.Split(f.Content, "\n") {
		buf.WriteString(fmt.Sprintf("%4d │ %s\n", i+1, line))
	}

	return buf.String()
}

func userMessage(text string) brtypes.Message {
	return brtypes.Message{
		Role: brtypes.ConversationRoleUser,
		Content: []brtypes.ContentBlock{
			&brtypes.ContentBlockMemberText{Value: text},
		},
	}
}

func assistantMessage(text string) brtypes.Message {
	return brtypes.Message{
		Role: brtypes.ConversationRoleAssistant,
		Content: []brtypes.ContentBlock{
			&brtypes.ContentBlockMemberText{Value: text},
		},
	}
}
