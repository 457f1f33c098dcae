package config

const (
	// MaxTurns bounds a conversation to this many user/assistant pairs.
	// Older pairs are dropped from the front once the window is exceeded,
	// which also bounds the payload sent to the completion endpoint.
	MaxTurns = 40

	// MaxTitleLength is the maximum rune length of a derived chat title.
	// Longer titles are truncated with an ellipsis.
	MaxTitleLength = 48

	// Temperature is the fixed sampling temperature for completions.
	Temperature = 0.15

	// MaxCompletionTokens caps the generated output length per request.
	MaxCompletionTokens = 900
)
