// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/ragchat/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown. Answer text is kept
// as-is since the service already emits markdown-ish prose.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a conversation to Markdown.
func (e *MarkdownExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if conv.IsEmpty() {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", conv.Title))

	if e.options.IncludeMetadata {
		sb.WriteString(fmt.Sprintf("- **Created:** %s\n", formatTimestamp(conv.CreatedAt)))
		sb.WriteString(fmt.Sprintf("- **Messages:** %d\n\n", len(conv.Messages)))
		sb.WriteString("---\n\n")
	}

	for i := range conv.Messages {
		sb.WriteString(e.renderMessage(&conv.Messages[i]))
	}

	sb.WriteString(fmt.Sprintf("\n---\n\n*Exported from ragchat on %s*\n",
		formatTimestamp(time.Now())))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

func (e *MarkdownExporter) renderMessage(msg *model.Message) string {
	var sb strings.Builder

	title := msg.Role.DisplayName()
	if msg.Stopped {
		title += " (stopped)"
	}
	if msg.Failed {
		title += " (failed)"
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n", title))
	sb.WriteString(msg.Content)
	sb.WriteString("\n\n")

	if msg.Role == model.RoleAssistant && e.options.IncludeMetadata {
		if len(msg.Sources) > 0 {
			sb.WriteString("**Sources:**\n\n")
			for _, c := range msg.Sources {
				if c.Score > 0 {
					sb.WriteString(fmt.Sprintf("- %s (%.2f)\n", c.Source, c.Score))
				} else {
					sb.WriteString(fmt.Sprintf("- %s\n", c.Source))
				}
			}
			if msg.QualityScore > 0 {
				sb.WriteString(fmt.Sprintf("\nQuality: %d/100\n", msg.QualityScore))
			}
			sb.WriteString("\n")
		}
		if msg.HasTelemetry() {
			sb.WriteString(fmt.Sprintf("*%s to first token, %s generating, %.1f chars/s*\n\n",
				formatSeconds(msg.ResponseTime), formatSeconds(msg.GenerationTime), msg.Speed))
		}
	}

	return sb.String()
}
