// Package core holds the domain types shared by the curation tools: dataset
// records, review scripts and their persisted review state.
package core

// Metadata represents the flexible key-value pairs associated with a record.
type Metadata map[string]any

// Clone returns a shallow copy of the metadata. Values are not deep-copied.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Record is the unit of the training dataset: a prompt/response pair with metadata.
// It is created by a collector or loader and only gains a content hash during
// deduplication.
type Record struct {
	Prompt   string   `json:"prompt"`
	Response string   `json:"response"`
	Metadata Metadata `json:"metadata"`
}

// Record types stored under the "record_type" metadata key.
const (
	RecordTypeSnippet   = "snippet"
	RecordTypeReference = "reference"
)

// Message is a single chat turn in the Harmony format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is the three-message (system/user/assistant) Harmony structure.
type Conversation struct {
	Messages []Message `json:"messages"`
}
