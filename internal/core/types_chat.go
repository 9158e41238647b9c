package core

import "encoding/json"

// Reference is a caller-supplied attachment carried alongside a chat message.
// Data and Metadata are kept as raw JSON so tools see exactly what the caller sent.
type Reference struct {
	Type       string          `json:"type"`
	ID         string          `json:"id"`
	IsImplicit bool            `json:"is_implicit,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// ChatMessage is a provider-neutral, role-tagged chat message.
type ChatMessage struct {
	Role        string      `json:"role"`
	Content     string      `json:"content"`
	Attachments []Reference `json:"copilot_references,omitempty"`
}

// FunctionCall is the tool-calling provider's decision to invoke one tool.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ReferenceMetadata is the display metadata of a reference emitted to the caller.
type ReferenceMetadata struct {
	DisplayName string `json:"display_name"`
	DisplayIcon string `json:"display_icon,omitempty"`
	DisplayURL  string `json:"display_url,omitempty"`
}

// LastMessage returns the most recent message, or false when there is none.
func LastMessage(messages []ChatMessage) (ChatMessage, bool) {
	if len(messages) == 0 {
		return ChatMessage{}, false
	}
	return messages[len(messages)-1], true
}
