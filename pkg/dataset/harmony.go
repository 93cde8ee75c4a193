package dataset

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/ahkcurate/pkg/core"
)

// HarmonySystemPrompt is the system turn prepended to every converted example.
const HarmonySystemPrompt = "Reasoning medium. You are a helpful assistant."

// ToHarmony wraps a prompt/response pair in the three-message chat structure.
func ToHarmony(prompt, response string) core.Conversation {
	return NewConversation(HarmonySystemPrompt, prompt, response)
}

// NewConversation builds a system/user/assistant conversation. User and
// assistant content are trimmed.
func NewConversation(system, user, assistant string) core.Conversation {
	return core.Conversation{Messages: []core.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: strings.TrimSpace(user)},
		{Role: "assistant", Content: strings.TrimSpace(assistant)},
	}}
}

// ConvertHarmony reads prompt/response JSONL from in and writes Harmony JSONL
// to out. Blank input lines are skipped. It returns the number of examples
// written.
func ConvertHarmony(in, out string) (int, error) {
	f, err := os.Open(in)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", in, err)
	}
	defer f.Close()

	var convs []core.Conversation
	err = ScanJSONL(f, func(_ int, rec core.Record) error {
		convs = append(convs, ToHarmony(rec.Prompt, rec.Response))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", in, err)
	}
	if err := writeLines(out, convs); err != nil {
		return 0, err
	}
	return len(convs), nil
}
