package sqlite

import (
	"regexp"
	"strings"
)

// statement is one top-level statement and its byte offset in the script.
type statement struct {
	text   string
	offset int
}

var (
	triggerHeadRe = regexp.MustCompile(`(?is)^CREATE\s+(TEMP\s+|TEMPORARY\s+)?TRIGGER\b`)
	endTailRe     = regexp.MustCompile(`(?i)\bEND\s*$`)
)

// splitStatements splits on semicolons outside quotes and comments. Trigger
// bodies keep their inner semicolons until the closing END.
func splitStatements(script string) []statement {
	var (
		out   []statement
		start = 0
	)
	flush := func(end int) {
		raw := script[start:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			lead := len(raw) - len(strings.TrimLeft(raw, " \t\r\n"))
			out = append(out, statement{text: trimmed, offset: start + lead})
		}
	}

	for i := 0; i < len(script); i++ {
		switch c := script[i]; {
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(script, i, c)
		case c == '[':
			if j := strings.IndexByte(script[i:], ']'); j >= 0 {
				i += j
			} else {
				i = len(script)
			}
		case c == '-' && i+1 < len(script) && script[i+1] == '-':
			if j := strings.IndexByte(script[i:], '\n'); j >= 0 {
				i += j
			} else {
				i = len(script)
			}
		case c == '/' && i+1 < len(script) && script[i+1] == '*':
			if j := strings.Index(script[i+2:], "*/"); j >= 0 {
				i += j + 3
			} else {
				i = len(script)
			}
		case c == ';':
			body := stripComments(script[start:i])
			if triggerHeadRe.MatchString(strings.TrimSpace(body)) && !endTailRe.MatchString(strings.TrimSpace(body)) {
				continue
			}
			flush(i)
			start = i + 1
		}
	}
	if start < len(script) {
		flush(len(script))
	}
	return out
}

// skipQuoted returns the index of the closing quote. Doubled quotes escape.
func skipQuoted(s string, i int, q byte) int {
	for j := i + 1; j < len(s); j++ {
		if s[j] != q {
			continue
		}
		if j+1 < len(s) && s[j+1] == q {
			j++
			continue
		}
		return j
	}
	return len(s)
}

var commentRe = regexp.MustCompile(`(?s)--[^\n]*|/\*.*?\*/`)

func stripComments(s string) string {
	return commentRe.ReplaceAllString(s, " ")
}

// leadingKeyword returns the first keyword of a statement, upper-cased.
func leadingKeyword(stmt string) string {
	fields := strings.Fields(stripComments(stmt))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(strings.TrimRight(fields[0], "("))
}
