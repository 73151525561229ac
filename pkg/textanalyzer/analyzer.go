// Package textanalyzer extracts interaction markers (mentions, hashtags,
// reshare prefixes) from raw post text. Fetchers fall back to it when the
// upstream API does not return structured entities.
package textanalyzer

import (
	"regexp"
	"strings"
)

// mentionRegex matches @handle not preceded by a word character or another
// '@' (so e-mail addresses are ignored). Handles are 1-15 chars of [A-Za-z0-9_].
var mentionRegex = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_@])@([A-Za-z0-9_]{1,15})\b`)

// hashtagRegex matches #tag containing at least one letter.
var hashtagRegex = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_&#])[#＃]([\p{L}\p{N}_]*\p{L}[\p{L}\p{N}_]*)`)

// reshareRegex matches the classic "RT @origin:" prefix.
var reshareRegex = regexp.MustCompile(`^RT @([A-Za-z0-9_]{1,15}):`)

// NormalizeHandle strips whitespace and a leading '@'. Entity usernames
// returned by the API go through it before they become graph node ids.
func NormalizeHandle(h string) string {
	return strings.TrimPrefix(strings.TrimSpace(h), "@")
}

// ExtractMentions returns mentioned handles in text order without repeats.
func ExtractMentions(text string) []string {
	return uniqueGroups(mentionRegex.FindAllStringSubmatch(text, -1), false)
}

// ExtractHashtags returns hashtags (without '#') in text order without
// repeats. Matching is case-insensitive; the first spelling is kept.
func ExtractHashtags(text string) []string {
	return uniqueGroups(hashtagRegex.FindAllStringSubmatch(text, -1), true)
}

// ReshareOrigin returns the handle from an "RT @origin:" prefix, or "".
func ReshareOrigin(text string) string {
	m := reshareRegex.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return ""
	}
	return m[1]
}

func uniqueGroups(matches [][]string, foldCase bool) []string {
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		key := m[1]
		if foldCase {
			key = strings.ToLower(key)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m[1])
	}
	return out
}
