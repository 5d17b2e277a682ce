package config

import "strings"

// Category keys match the command package names under internal/command.
const (
	CategoryUtility    = "utility"
	CategoryFun        = "fun"
	CategoryModeration = "moderation"
	CategoryAI         = "ai"
	CategorySearch     = "search"
	CategoryRandom     = "random"
)

var CategoryWeights = map[string]int{
	CategoryUtility:    0,
	CategoryAI:         10,
	CategorySearch:     20,
	CategoryFun:        30,
	CategoryRandom:     40,
	CategoryModeration: 50,
}

var categoryEmoji = map[string]string{
	CategoryUtility:    "🔧",
	CategoryFun:        "🎮",
	CategoryModeration: "🛡️",
	CategoryAI:         "🤖",
	CategorySearch:     "🔍",
	CategoryRandom:     "🎲",
}

// CategoryEmoji returns the icon shown next to a category heading.
func CategoryEmoji(category string) string {
	if e, ok := categoryEmoji[category]; ok {
		return e
	}
	return "📁"
}

// CategoryWeight orders categories in listings; unknown ones sort last.
func CategoryWeight(category string) int {
	if w, ok := CategoryWeights[category]; ok {
		return w
	}
	return 1000
}

// CategoryTitle is the display name of a category: "utility" → "Utility".
func CategoryTitle(category string) string {
	if category == CategoryAI {
		return "AI"
	}
	if category == "" {
		return "Other"
	}
	return strings.ToUpper(category[:1]) + category[1:]
}
