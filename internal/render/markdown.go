package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	xhtml "golang.org/x/net/html"
)

// MarkdownToText renders an agent answer for a fixed-width viewport.
// The markdown is expanded to HTML first, then flattened to plain text with
// terminal-friendly markers: *italic*, **bold**, `code`, indented code
// blocks, bullet and numbered lists, link targets in brackets.
func MarkdownToText(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		// Unparseable input still gets shown, just unstyled.
		return wrapText(strings.TrimSpace(md), width)
	}
	return htmlToText(buf.String(), width)
}

// htmlToText flattens goldmark's HTML output. It handles the elements
// goldmark emits for CommonMark: p, em, strong, code, pre, a, h1-h6,
// ul/ol/li, blockquote, br, hr.
func htmlToText(raw string, width int) string {
	tokenizer := xhtml.NewTokenizer(strings.NewReader(raw))
	var sb strings.Builder
	var inPre bool
	var inCode bool
	var anchorURL string
	var listCounters []int // -1 for unordered lists
	liDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			return wrapText(strings.TrimSpace(sb.String()), width)

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "p":
				if liDepth > 0 {
					break
				}
				blockBreak(&sb)
			case "i", "em":
				sb.WriteString("*")
			case "b", "strong":
				sb.WriteString("**")
			case "code":
				if !inPre {
					sb.WriteString("`")
				}
				inCode = true
			case "pre":
				inPre = true
				blockBreak(&sb)
			case "a":
				for _, attr := range t.Attr {
					if attr.Key == "href" {
						anchorURL = attr.Val
					}
				}
			case "h1", "h2", "h3", "h4", "h5", "h6":
				blockBreak(&sb)
				level := int(t.Data[1] - '0')
				sb.WriteString(strings.Repeat("#", level))
				sb.WriteString(" ")
			case "ul":
				blockBreak(&sb)
				listCounters = append(listCounters, -1)
			case "ol":
				blockBreak(&sb)
				listCounters = append(listCounters, 0)
			case "li":
				liDepth++
				if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
					sb.WriteString("\n")
				}
				sb.WriteString(strings.Repeat("  ", len(listCounters)-1))
				if n := len(listCounters); n > 0 && listCounters[n-1] >= 0 {
					listCounters[n-1]++
					fmt.Fprintf(&sb, "%d. ", listCounters[n-1])
				} else {
					sb.WriteString("• ")
				}
			case "br":
				sb.WriteString("\n")
			case "hr":
				blockBreak(&sb)
				sb.WriteString("---")
			case "blockquote":
				blockBreak(&sb)
			}

		case xhtml.EndTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "i", "em":
				sb.WriteString("*")
			case "b", "strong":
				sb.WriteString("**")
			case "code":
				if !inPre {
					sb.WriteString("`")
				}
				inCode = false
			case "pre":
				inPre = false
				sb.WriteString("\n")
			case "a":
				if anchorURL != "" {
					text := strings.TrimSpace(sb.String())
					// Only append the target if it differs from the link text.
					if !strings.HasSuffix(text, anchorURL) {
						sb.WriteString(" [")
						sb.WriteString(anchorURL)
						sb.WriteString("]")
					}
					anchorURL = ""
				}
			case "ul", "ol":
				if n := len(listCounters); n > 0 {
					listCounters = listCounters[:n-1]
				}
			case "li":
				if liDepth > 0 {
					liDepth--
				}
			}

		case xhtml.TextToken:
			text := tokenizer.Token().Data
			if inPre {
				// Preserve whitespace in code blocks, indent with 4 spaces.
				lines := strings.Split(text, "\n")
				for i, line := range lines {
					if i > 0 {
						sb.WriteString("\n")
					}
					if line != "" {
						sb.WriteString("    ")
						sb.WriteString(line)
					}
				}
			} else if inCode {
				sb.WriteString(text)
			} else {
				// Newline-only nodes are layout between tags, not content.
				if strings.Trim(text, "\n") == "" && strings.Contains(text, "\n") {
					break
				}
				sb.WriteString(strings.ReplaceAll(text, "\n", " "))
			}
		}
	}
}

// blockBreak separates block elements with one blank line.
func blockBreak(sb *strings.Builder) {
	if sb.Len() == 0 {
		return
	}
	s := sb.String()
	switch {
	case strings.HasSuffix(s, "\n\n"):
	case strings.HasSuffix(s, "\n"):
		sb.WriteString("\n")
	default:
		sb.WriteString("\n\n")
	}
}
