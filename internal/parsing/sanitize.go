// Package parsing recovers typed blueprint payloads from loosely-structured
// model output.
package parsing

import (
	"regexp"
	"strings"
)

// fencedBlockRe matches a markdown code fence with an optional language tag,
// capturing the interior. Models frequently wrap JSON this way even when
// told not to.
var fencedBlockRe = regexp.MustCompile("(?s)```(?:json|javascript|typescript|ts)?[ \t]*\r?\n?(.*?)```")

// ExtractJSONBlock pulls the most likely JSON object out of raw model text.
// It prefers the interior of a fenced code block; otherwise it scans for the
// first balanced {...} object, skipping braces inside string literals. If
// neither is found the trimmed input is returned unchanged so the strict
// parser can produce a useful error.
func ExtractJSONBlock(text string) string {
	trimmed := strings.TrimSpace(text)

	if m := fencedBlockRe.FindStringSubmatch(trimmed); m != nil {
		if inner := strings.TrimSpace(m[1]); inner != "" {
			return inner
		}
	}

	if obj, ok := firstBalancedObject(trimmed); ok {
		return obj
	}

	return trimmed
}

// firstBalancedObject returns the first brace-balanced object in s. The depth
// counter ignores braces inside string literals and honors escape sequences.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
