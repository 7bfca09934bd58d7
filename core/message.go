package core

import (
	"crypto/rand"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
	MessageRoleTool      MessageRole = "tool"
)

type ToolContentType string

const (
	ToolContentTypeCall   ToolContentType = "tool-call"
	ToolContentTypeResult ToolContentType = "tool-result"
)

// ToolContent is one entry of a structured message body: either the model's
// tool invocation or the matching result. Every appended tool-call must be
// followed, before the turn ends, by a tool-result with the same ToolCallID.
type ToolContent struct {
	Type       ToolContentType `json:"type"`
	ToolName   string          `json:"toolName"`
	ToolCallID string          `json:"toolCallId"`
	Args       map[string]any  `json:"args,omitempty"`
	Result     map[string]any  `json:"result,omitempty"`
}

// Message is one entry of the append-only conversation log. Either Content
// (plain text) or ToolContent (structured) is set, never both. Messages are
// never mutated after append; the only exception is the done/finalize
// transition that replaces a streaming placeholder with final content.
type Message struct {
	ID          string        `json:"id"`
	Role        MessageRole   `json:"role"`
	Content     string        `json:"content,omitempty"`
	ToolContent []ToolContent `json:"toolContent,omitempty"`
}

// AIState is the authoritative conversation log: the single source of truth
// consumed by the language model on every turn. Mutations are last-writer-wins
// snapshots, not merges.
type AIState struct {
	ChatID   string    `json:"chatId"`
	Messages []Message `json:"messages"`
}

// Clone returns a deep copy so callers can never alias the stored log.
func (s AIState) Clone() AIState {
	out := AIState{ChatID: s.ChatID}
	if s.Messages == nil {
		return out
	}
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	for i, m := range s.Messages {
		if len(m.ToolContent) > 0 {
			tc := make([]ToolContent, len(m.ToolContent))
			copy(tc, m.ToolContent)
			out.Messages[i].ToolContent = tc
		}
	}
	return out
}

// UIMessage pairs a stable id with a renderable fragment. UIState is the
// display-only projection of AIState; it is never read by the model.
type UIMessage struct {
	ID      string   `json:"id"`
	Display Fragment `json:"display"`
}

type UIState []UIMessage

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// NewID returns a 7-character random message id, unique within a conversation.
func NewID() string {
	buf := make([]byte, 7)
	if _, err := rand.Read(buf); err != nil {
		panic("core: crypto/rand unavailable: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(buf)
}
