package clinical

import (
	"context"
	"strings"
)

//go:generate mockgen -source=generator.go -destination=mocks/mock_generator.go -package=mocks

// Generator is the text-generation oracle. openai.Client satisfies it.
type Generator interface {
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

// StripFence removes a leading ``` line and a trailing ``` line from an
// oracle response, if present.
func StripFence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
		lines = lines[1:]
	}
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
