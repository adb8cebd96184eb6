package normalize

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Candidate key lists per target field, tried in order. The first key
// holding a non-empty value wins.
var (
	jsonTitleKeys     = []string{"title", "name", "header"}
	jsonTimestampKeys = []string{"timestamp", "time", "date", "created_at", "createdAt"}
	jsonChannelKeys   = []string{"channel", "channelName", "subtitles", "author"}
	jsonURLKeys       = []string{"url", "titleUrl", "link", "href"}

	csvTitleKeys     = []string{"title", "name", "video title"}
	csvTimestampKeys = []string{"timestamp", "time", "date"}
	csvChannelKeys   = []string{"channel", "channel name", "artist"}
	csvURLKeys       = []string{"url", "link", "video url"}
)

var fold = cases.Fold()

// extractField tries each candidate key against a JSON object and returns
// the first non-empty value as a string. Lists of objects carrying a
// "name" field yield that name (e.g. subtitles: [{"name": "Channel"}]);
// scalar lists are joined with ", ".
func extractField(obj map[string]any, keys []string) string {
	for _, key := range keys {
		value, ok := obj[key]
		if !ok || isEmpty(value) {
			continue
		}

		if list, ok := value.([]any); ok {
			if first, ok := list[0].(map[string]any); ok {
				if name, ok := first["name"]; ok {
					return fmt.Sprint(name)
				}
				continue
			}
			parts := make([]string, 0, len(list))
			for _, item := range list {
				parts = append(parts, fmt.Sprint(item))
			}
			return strings.Join(parts, ", ")
		}

		return fmt.Sprint(value)
	}
	return ""
}

// extractFieldFold mirrors extractField for flat string rows, matching
// keys case-insensitively via Unicode case folding (CSV headers vary
// wildly across exports).
func extractFieldFold(row map[string]string, keys []string) string {
	folded := make(map[string]string, len(row))
	for key, value := range row {
		folded[fold.String(key)] = value
	}

	for _, key := range keys {
		if value, ok := folded[fold.String(key)]; ok && value != "" {
			return value
		}
	}
	return ""
}

// isEmpty reports whether a decoded JSON value counts as "not found":
// nil, empty string, empty list or empty object.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}
