package convert

import (
	"fmt"

	"modelsagent/internal/core"
	"modelsagent/internal/util"
)

// platformEnvelope is the calling platform's request body. Fields other than
// messages are platform bookkeeping and are ignored.
type platformEnvelope struct {
	Messages []platformMessage `json:"messages"`
}

type platformMessage struct {
	Role       string           `json:"role"`
	Content    *string          `json:"content"`
	References []core.Reference `json:"copilot_references"`
}

// Normalize decodes a verified request body into provider-neutral chat
// messages. Order, roles and references are preserved as sent.
func Normalize(body []byte) ([]core.ChatMessage, error) {
	var envelope platformEnvelope
	if err := util.UnmarshalJSON(body, &envelope); err != nil {
		return nil, core.NewBadRequest("request body is not a valid message envelope", err)
	}
	if len(envelope.Messages) == 0 {
		return nil, core.NewBadRequest("request has no messages", nil)
	}

	messages := make([]core.ChatMessage, 0, len(envelope.Messages))
	for i, m := range envelope.Messages {
		switch m.Role {
		case core.RoleSystem, core.RoleUser, core.RoleAssistant:
		default:
			return nil, core.NewBadRequest(fmt.Sprintf("message %d has unsupported role %q", i, m.Role), nil)
		}

		msg := core.ChatMessage{Role: m.Role}
		if m.Content != nil {
			msg.Content = *m.Content
		}
		if len(m.References) > 0 {
			msg.Attachments = m.References
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// ContextReferences returns the references of the last message whose type is
// a code selection or a file, in their original order.
func ContextReferences(messages []core.ChatMessage) []core.Reference {
	last, ok := core.LastMessage(messages)
	if !ok {
		return nil
	}
	var refs []core.Reference
	for _, ref := range last.Attachments {
		if ref.Type == core.ReferenceTypeSelection || ref.Type == core.ReferenceTypeFile {
			refs = append(refs, ref)
		}
	}
	return refs
}
