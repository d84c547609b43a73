package openai

// truncateText caps text at limit characters without splitting a rune.
// A non-positive limit disables truncation.
func truncateText(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
