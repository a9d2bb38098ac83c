package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxTextLength is the largest submission accepted by [ValidateText], in
// bytes.
const MaxTextLength = 64 * 1024

// ValidateText validates a user submission before it is sent to the model
// service.
//
//   - No empty or whitespace-only text
//   - No null bytes
//   - Maximum length of [MaxTextLength] bytes
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeInvalidInput, "Text is required")
	}
	if len(text) > MaxTextLength {
		return New(ErrCodeInvalidInput, "text too long (max %d bytes)", MaxTextLength)
	}
	if strings.ContainsRune(text, '\x00') {
		return New(ErrCodeInvalidInput, "text contains null bytes")
	}
	return nil
}

// ValidateNodeID validates a node ID received from a client. It only checks
// shape; whether the node exists is up to the graph.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "node id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "node id contains invalid characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// modelNameRegex matches Ollama model references such as "gemma3",
// "llama3.2:3b" or "library/mistral:latest".
var modelNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*(:[A-Za-z0-9._-]+)?$`)

// ValidateModelName validates a model reference.
func ValidateModelName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "model name cannot be empty")
	}
	if strings.Contains(name, "..") || !modelNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid model name: %q", name)
	}
	return nil
}
