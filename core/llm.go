package core

type LLMMessageRole string

const (
	LLMMessageRoleUser      LLMMessageRole = "user"
	LLMMessageRoleAssistant LLMMessageRole = "assistant"
	LLMMessageRoleSystem    LLMMessageRole = "system"
	LLMMessageRoleTool      LLMMessageRole = "tool"
)

// LLMMessage represents a message exchanged with the LLM.
// Assistant messages that invoked tools carry ToolCalls; tool messages carry
// the ToolCallID they answer plus the serialized result in Message.
type LLMMessage struct {
	Role       LLMMessageRole `json:"role"`                   // Role of the message sender (e.g., user, assistant, system, tool).
	Message    string         `json:"message"`                // Content of the message.
	ToolCalls  []LLMToolCall  `json:"tool_calls,omitempty"`   // Tool invocations issued by an assistant message.
	ToolCallID string         `json:"tool_call_id,omitempty"` // For role=tool: the call this message answers.
	ToolName   string         `json:"tool_name,omitempty"`    // For role=tool: name of the answering tool.
}

type LLMParamterType string

const (
	LLMParameterTypeString  LLMParamterType = "string"
	LLMParameterTypeInteger LLMParamterType = "number"
	LLMParameterTypeBoolean LLMParamterType = "boolean"
	LLMParameterTypeObject  LLMParamterType = "object"
)

// Parameter represents a parameter for an LLM tool.
type Parameter struct {
	Name        string          `json:"name"`        // Name of the parameter.
	Description string          `json:"description"` // Description of the parameter.
	Required    bool            `json:"required"`    // Whether the parameter is required.
	Example     string          `json:"example"`     // Example value for the parameter.
	Type        LLMParamterType `json:"type"`        // Type of the parameter (e.g., string, integer).
}

// LLMTool represents a tool that can be used by the LLM.
type LLMTool struct {
	Name        string      `json:"name"`                 // Name of the tool.
	ToolId      string      `json:"tool_id"`              // Id of the tool.
	Description string      `json:"description"`          // Description of the tool's functionality.
	Parameters  []Parameter `json:"parameters,omitempty"` // Parameters required by the tool.
}

// LLMContext is the full model-visible input for one completion: the fixed
// system instruction, the conversation history and the callable tool set.
type LLMContext struct {
	System   string
	Messages []LLMMessage
	Tools    []LLMTool
}

// LLMToolCall represents a call to an LLM tool.
type LLMToolCall struct {
	CallID     string         `json:"call_id"`              // Provider-assigned id of this invocation.
	ToolId     string         `json:"tool_id"`              // Id of the tool being called.
	Parameters map[string]any `json:"parameters,omitempty"` // Parameters for the tool call.
}
