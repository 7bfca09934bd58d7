package server

import (
	"github.com/bytedance/sonic"

	"github.com/jackdwave/ai-chatbot/core"
)

const (
	FrameTypeFragment = "fragment"
	FrameTypeDone     = "done"
	FrameTypeError    = "error"
)

// Frame is one websocket message pushed to a chat's subscribers. Fragment
// frames replace the message identified by MessageID; a done frame carries
// its final form.
type Frame struct {
	Type      string        `json:"type"`
	MessageID string        `json:"messageId"`
	Kind      string        `json:"kind,omitempty"`
	Fragment  core.Fragment `json:"fragment,omitempty"`
}

func fragmentFrame(messageID string, f core.Fragment) Frame {
	return Frame{Type: FrameTypeFragment, MessageID: messageID, Kind: f.Kind(), Fragment: f}
}

func doneFrame(messageID string, f core.Fragment) Frame {
	fr := Frame{Type: FrameTypeDone, MessageID: messageID}
	if f != nil {
		fr.Kind = f.Kind()
		fr.Fragment = f
	}
	return fr
}

func (f Frame) encode() ([]byte, error) {
	return sonic.Marshal(f)
}
