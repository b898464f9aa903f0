// Package highlight colors SQL text for terminal output.
package highlight

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is used when a theme names no chroma style
const DefaultStyle = "monokai"

// SQL renders sql with ANSI 256 color escapes in the named chroma style.
// Unknown styles fall back to chroma's fallback style.
func SQL(sql, style string) (string, error) {
	lexer := lexers.Get("sql")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	if style == "" {
		style = DefaultStyle
	}
	chromaStyle := styles.Get(style)
	if chromaStyle == nil {
		chromaStyle = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, sql)
	if err != nil {
		return "", fmt.Errorf("failed to tokenise SQL: %w", err)
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, chromaStyle, iterator); err != nil {
		return "", fmt.Errorf("failed to highlight SQL: %w", err)
	}

	// the lexer ensures a final newline; drop it when sql had none
	out := buf.String()
	if !strings.HasSuffix(sql, "\n") {
		if i := strings.LastIndex(out, "\n"); i >= 0 && Strip(out[i+1:]) == "" {
			out = out[:i] + out[i+1:]
		}
	}
	return out, nil
}

// Strip removes ANSI color escapes from s
func Strip(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
