// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/jeranaias/ragchat/internal/format"
	"github.com/jeranaias/ragchat/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a self-contained HTML page with
// embedded CSS. Answer bodies go through the display formatter so the
// export matches what the user saw while chatting.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML.
func (e *HTMLExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if conv.IsEmpty() {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(conv.Title)))
	sb.WriteString("    <meta name=\"generator\" content=\"ragchat\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", conv.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(pageCSS)
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", e.options.Theme))
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(conv))
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for i := range conv.Messages {
		sb.WriteString(e.renderMessage(&conv.Messages[i]))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>ragchat</strong> on %s</p>\n",
		formatTimestamp(time.Now())))
	sb.WriteString("        </footer>\n")

	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING
// =============================================================================

func (e *HTMLExporter) renderHeader(conv *model.Conversation) string {
	var sb strings.Builder

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(conv.Title)))
	sb.WriteString("            <div class=\"metadata\">\n")
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n",
		formatTimestamp(conv.CreatedAt)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n",
		len(conv.Messages)))
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	return sb.String()
}

func (e *HTMLExporter) renderMessage(msg *model.Message) string {
	var sb strings.Builder

	roleClass := strings.ToLower(msg.Role.String())
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", roleClass))

	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n",
		html.EscapeString(msg.Role.DisplayName())))
	if msg.Stopped {
		sb.WriteString("                    <span class=\"badge stopped\">stopped</span>\n")
	}
	if msg.Failed {
		sb.WriteString("                    <span class=\"badge failed\">failed</span>\n")
	}
	sb.WriteString("                </div>\n")

	sb.WriteString("                <div class=\"message-content\">")
	if msg.Role == model.RoleAssistant {
		sb.WriteString(format.Render(msg.Content))
	} else {
		sb.WriteString(html.EscapeString(msg.Content))
	}
	sb.WriteString("</div>\n")

	if msg.Role == model.RoleAssistant && e.options.IncludeMetadata {
		sb.WriteString(e.renderSources(msg))
		sb.WriteString(e.renderStats(msg))
	}

	sb.WriteString("            </div>\n")

	return sb.String()
}

func (e *HTMLExporter) renderSources(msg *model.Message) string {
	if len(msg.Sources) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("                <div class=\"sources\">\n")
	sb.WriteString("                    <span class=\"sources-label\">Sources</span>\n")
	sb.WriteString("                    <ul>\n")
	for _, c := range msg.Sources {
		if c.Score > 0 {
			sb.WriteString(fmt.Sprintf("                        <li>%s <span class=\"score\">%.2f</span></li>\n",
				html.EscapeString(c.Source), c.Score))
		} else {
			sb.WriteString(fmt.Sprintf("                        <li>%s</li>\n", html.EscapeString(c.Source)))
		}
	}
	sb.WriteString("                    </ul>\n")
	if msg.QualityScore > 0 {
		sb.WriteString(fmt.Sprintf("                    <span class=\"quality\">Quality: %d/100</span>\n",
			msg.QualityScore))
	}
	sb.WriteString("                </div>\n")
	return sb.String()
}

func (e *HTMLExporter) renderStats(msg *model.Message) string {
	if !msg.HasTelemetry() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("                <div class=\"message-stats\">\n")
	if msg.ResponseTime > 0 {
		sb.WriteString(fmt.Sprintf("                    <span class=\"stat\">First token: %s</span>\n",
			formatSeconds(msg.ResponseTime)))
	}
	if msg.GenerationTime > 0 {
		sb.WriteString(fmt.Sprintf("                    <span class=\"stat\">Generation: %s</span>\n",
			formatSeconds(msg.GenerationTime)))
	}
	if msg.Speed > 0 {
		sb.WriteString(fmt.Sprintf("                    <span class=\"stat\">Speed: %.1f chars/s</span>\n",
			msg.Speed))
	}
	sb.WriteString("                </div>\n")
	return sb.String()
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const pageCSS = `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            --font-mono: "SF Mono", "Monaco", "Inconsolata", "Source Code Pro", monospace;
        }

        .dark-theme {
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --bg-tertiary: #414868;
            --text-primary: #c0caf5;
            --text-muted: #565f89;
            --border-color: #414868;
            --user-bg: #1f2335;
            --assistant-bg: #24283b;
            --accent-blue: #7aa2f7;
            --accent-green: #9ece6a;
            --accent-yellow: #e0af68;
            --accent-red: #f7768e;
        }

        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f7f8fa;
            --bg-tertiary: #e1e4e8;
            --text-primary: #24292e;
            --text-muted: #6a737d;
            --border-color: #e1e4e8;
            --user-bg: #f6f8fa;
            --assistant-bg: #ffffff;
            --accent-blue: #0366d6;
            --accent-green: #22863a;
            --accent-yellow: #b08800;
            --accent-red: #d73a49;
        }

        body {
            font-family: var(--font-sans);
            font-size: 16px;
            line-height: 1.6;
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
        }

        .container {
            max-width: 900px;
            margin: 0 auto;
            background: var(--bg-secondary);
            border-radius: 12px;
            overflow: hidden;
        }

        .header {
            padding: 32px;
            background: var(--bg-tertiary);
            border-bottom: 2px solid var(--border-color);
        }

        .header h1 {
            font-size: 28px;
            margin-bottom: 16px;
        }

        .metadata {
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
            font-size: 14px;
            color: var(--text-muted);
        }

        .conversation { padding: 24px 32px; }

        .message {
            margin-bottom: 24px;
            padding: 20px;
            border-radius: 8px;
            border-left: 4px solid transparent;
        }

        .user-message {
            background: var(--user-bg);
            border-left-color: var(--accent-blue);
        }

        .assistant-message {
            background: var(--assistant-bg);
            border-left-color: var(--accent-green);
        }

        .message-header {
            display: flex;
            align-items: center;
            gap: 8px;
            margin-bottom: 12px;
            font-size: 14px;
        }

        .role-label { font-weight: 600; }

        .badge {
            font-size: 12px;
            padding: 2px 8px;
            border-radius: 10px;
            background: var(--bg-tertiary);
        }

        .badge.stopped { color: var(--accent-yellow); }
        .badge.failed { color: var(--accent-red); }

        .message-content { line-height: 1.7; }

        .sources {
            margin-top: 12px;
            padding-top: 12px;
            border-top: 1px solid var(--border-color);
            font-size: 13px;
            color: var(--text-muted);
        }

        .sources-label { font-weight: 600; }

        .sources ul {
            list-style: none;
            margin: 4px 0;
        }

        .sources .score { font-family: var(--font-mono); }

        .message-stats {
            margin-top: 8px;
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
            font-size: 13px;
            color: var(--text-muted);
        }

        .footer {
            padding: 20px 32px;
            text-align: center;
            font-size: 14px;
            color: var(--text-muted);
            border-top: 1px solid var(--border-color);
        }

        @media print {
            body { padding: 0; }
            .container { border-radius: 0; }
            .message { page-break-inside: avoid; }
        }
    </style>
`
