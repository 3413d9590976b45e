// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd010-llm-client R4 (streaming), R5 (token tracking).
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/petar-djukic/go-edit/pkg/types"

	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// EventStream abstracts the Bedrock ConverseStream event stream for testing.
type EventStream interface {
	Events() <-chan brtypes.ConverseStreamOutput
	Close() error
	Err() error
}

// consumeStream drains a ConverseStream, forwarding text deltas through
// tokenCh and accumulating the full response. tokenCh is closed when the
// stream ends or the context is cancelled. The response always holds
// whatever text arrived; Err says whether it can be trusted as complete,
// since a dropped stream and a clean end look identical on the events
// channel.
//
// Implements: prd010-llm-client R4.1-R4.4, R5.1-R5.2.
func consumeStream(ctx context.Context, stream EventStream, tokenCh chan<- string) *types.StreamResponse {
	defer close(tokenCh)

	var text strings.Builder
	response := &types.StreamResponse{}

	finish := func(err error) *types.StreamResponse {
		response.FullText = text.String()
		response.Err = err
		return response
	}

	events := stream.Events()
	for {
		select {
		case <-ctx.Done():
			stream.Close()
			return finish(ctx.Err())

		case event, ok := <-events:
			if !ok {
				if err := stream.Err(); err != nil {
					return finish(fmt.Errorf("%w: stream interrupted: %v", ErrLLMFailure, err))
				}
				return finish(nil)
			}
			if err := foldEvent(ctx, event, &text, response, tokenCh); err != nil {
				stream.Close()
				return finish(err)
			}
		}
	}
}

// foldEvent folds one stream event into the accumulating response.
func foldEvent(ctx context.Context, event brtypes.ConverseStreamOutput, text *strings.Builder, response *types.StreamResponse, tokenCh chan<- string) error {
	switch v := event.(type) {
	case *brtypes.ConverseStreamOutputMemberContentBlockDelta:
		delta, ok := v.Value.Delta.(*brtypes.ContentBlockDeltaMemberText)
		if !ok {
			return nil
		}
		text.WriteString(delta.Value)
		select {
		case tokenCh <- delta.Value:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}

	case *brtypes.ConverseStreamOutputMemberMetadata:
		if u := v.Value.Usage; u != nil {
			if u.InputTokens != nil {
				response.Usage.InputTokens = int(*u.InputTokens)
			}
			if u.OutputTokens != nil {
				response.Usage.OutputTokens = int(*u.OutputTokens)
			}
		}
	}
	return nil
}
