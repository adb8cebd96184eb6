package classify

import (
	"strings"

	"github.com/UnderTheBridgeCoding/OmegaParse/app/schema"
)

// filenameRule maps filename substrings to a likely content category.
// Rules are evaluated top to bottom; the first match wins.
type filenameRule struct {
	match         func(name string) bool
	contentLikely string
	confidence    string
}

// filenameRules are checked against the case-folded base name. Filename
// evidence always outranks structural inspection: for these export formats
// the name is a more reliable signal than the shape of the payload.
var filenameRules = []filenameRule{
	{
		match: func(name string) bool {
			return strings.Contains(name, "music") &&
				(strings.Contains(name, "watch") || strings.Contains(name, "history"))
		},
		contentLikely: "music-history",
		confidence:    schema.ConfidenceMedium,
	},
	{
		match: func(name string) bool {
			return strings.Contains(name, "watch") || strings.Contains(name, "history")
		},
		contentLikely: "watch-history",
		confidence:    schema.ConfidenceMedium,
	},
	{
		match:         func(name string) bool { return strings.Contains(name, "comment") },
		contentLikely: "comments",
		confidence:    schema.ConfidenceMedium,
	},
	{
		match:         func(name string) bool { return strings.Contains(name, "search") },
		contentLikely: "search-history",
		confidence:    schema.ConfidenceMedium,
	},
	{
		match:         func(name string) bool { return strings.Contains(name, "subscription") },
		contentLikely: "subscriptions",
		confidence:    schema.ConfidenceMedium,
	},
	{
		match:         func(name string) bool { return strings.Contains(name, "playlist") },
		contentLikely: "playlists",
		confidence:    schema.ConfidenceMedium,
	},
}

// keyRule classifies a JSON object by the keys it carries.
type keyRule struct {
	match         func(obj map[string]any) bool
	contentLikely string
	confidence    string
}

var keyRules = []keyRule{
	{
		match: func(obj map[string]any) bool {
			return hasKey(obj, "title") && hasKey(obj, "titleUrl")
		},
		contentLikely: "watch-event",
		confidence:    schema.ConfidenceHigh,
	},
	{
		match: func(obj map[string]any) bool {
			if !hasKey(obj, "header") || !hasKey(obj, "title") {
				return false
			}
			header, _ := obj["header"].(string)
			return strings.Contains(header, "products")
		},
		contentLikely: "watch-event",
		confidence:    schema.ConfidenceMedium,
	},
	{
		match: func(obj map[string]any) bool {
			return hasKey(obj, "time") && hasKey(obj, "title")
		},
		contentLikely: "media-event",
		confidence:    schema.ConfidenceMedium,
	},
	{
		match: func(obj map[string]any) bool {
			return hasKey(obj, "timestamp") || hasKey(obj, "time") || hasKey(obj, "date")
		},
		contentLikely: "timestamped-event",
		confidence:    schema.ConfidenceLow,
	},
}

func hasKey(obj map[string]any, key string) bool {
	_, ok := obj[key]
	return ok
}
