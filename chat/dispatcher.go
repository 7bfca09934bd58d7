package chat

import (
	"context"

	"github.com/bytedance/sonic"

	"github.com/jackdwave/ai-chatbot/core"
	"github.com/jackdwave/ai-chatbot/fragments"
	"github.com/jackdwave/ai-chatbot/watch"
)

// LLMService is the language-model collaborator boundary. RunCompletion
// streams text deltas to out and tool invocations to toolCalls, returning
// once generation finished. Both channels must be unbuffered so every send
// is observed before RunCompletion returns.
type LLMService interface {
	RunCompletion(ctx context.Context, lctx core.LLMContext, out chan<- string, toolCalls chan<- core.LLMToolCall) error
}

// DurationService resolves a video's length in seconds. Implemented by
// youtube.Client; narrowed to an interface so tests can stub it.
type DurationService interface {
	Duration(ctx context.Context, videoID string) (int, error)
}

// TurnResponse is what a caller gets back from a turn: the id of the
// appended message plus a live fragment stream. Intermediate values replace
// the rendered message content; the terminal value is the final form.
type TurnResponse struct {
	MessageID string
	Fragments *core.Streamable[core.Fragment]
}

// Dispatcher owns one conversation turn end to end: it appends the user
// message, consults the language model, streams free text, and resolves tool
// invocations against their handlers while keeping the conversation log
// structurally valid — a tool-call entry is always committed together with
// its matching tool-result, whatever error path was taken.
type Dispatcher struct {
	store    *StateStore
	llm      LLMService
	poller   *watch.Poller
	duration DurationService
	logger   *core.Logger
}

func NewDispatcher(store *StateStore, llm LLMService, poller *watch.Poller, duration DurationService, logger *core.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		llm:      llm,
		poller:   poller,
		duration: duration,
		logger:   logger,
	}
}

// SubmitUserMessage runs one conversation turn. The returned TurnResponse is
// live immediately; generation and any tool execution continue in the
// background and finish by sealing the fragment stream.
func (d *Dispatcher) SubmitUserMessage(ctx context.Context, chatID, content string) *TurnResponse {
	st := d.store.Begin(chatID)

	s := st.Get()
	s.Messages = append(s.Messages, core.Message{
		ID:      core.NewID(),
		Role:    core.MessageRoleUser,
		Content: content,
	})
	if err := st.Update(s); err != nil {
		// Cannot happen on a fresh handle; log and continue with the turn.
		d.logger.With(map[string]any{"error": err}).Error("user message append rejected")
	}

	resp := &TurnResponse{
		MessageID: core.NewID(),
		Fragments: core.NewStreamable[core.Fragment](),
	}
	_ = resp.Fragments.Update(&fragments.SkeletonFragment{})

	go d.runTurn(ctx, st, resp)
	return resp
}

func (d *Dispatcher) runTurn(ctx context.Context, st *State, resp *TurnResponse) {
	defer func() {
		// Whatever happened, the turn must end with a sealed stream and a
		// finalized state, or the chat would deadlock and the log could be
		// left with a dangling tool-call.
		if r := recover(); r != nil {
			d.logger.With(map[string]any{"panic": r}).Error("turn panicked")
			_ = resp.Fragments.Done(&fragments.ErrorFragment{Message: "Something went wrong, please try again!"})
		}
		if !resp.Fragments.Sealed() {
			_ = resp.Fragments.Close()
		}
		st.Seal()
	}()

	lctx := buildLLMContext(st.Get())

	out := make(chan string)
	toolCalls := make(chan core.LLMToolCall)
	errCh := make(chan error, 1)
	go func() {
		errCh <- d.llm.RunCompletion(ctx, lctx, out, toolCalls)
	}()

	var fullText string
	var toolFragment core.Fragment

	for {
		select {
		case delta := <-out:
			if toolFragment != nil {
				continue // text after a handled tool call is dropped
			}
			fullText += delta
			_ = resp.Fragments.Update(&fragments.TextFragment{Text: fullText, Streaming: true})

		case call := <-toolCalls:
			if toolFragment != nil {
				d.logger.With(map[string]any{"tool": call.ToolId}).Warn("ignoring second tool call in one turn")
				continue
			}
			toolFragment = d.dispatchTool(ctx, st, resp, call)

		case err := <-errCh:
			if err != nil {
				d.logger.With(map[string]any{"error": err}).Error("completion failed")
				_ = resp.Fragments.Done(&fragments.ErrorFragment{Message: "Something went wrong, please try again!"})
				return
			}
			if toolFragment != nil {
				_ = resp.Fragments.Done(toolFragment)
				return
			}
			d.finishTextTurn(st, resp, fullText)
			return
		}
	}
}

// finishTextTurn commits the assistant's streamed free text as the final
// message of the turn.
func (d *Dispatcher) finishTextTurn(st *State, resp *TurnResponse, fullText string) {
	s := st.Get()
	s.Messages = append(s.Messages, core.Message{
		ID:      core.NewID(),
		Role:    core.MessageRoleAssistant,
		Content: fullText,
	})
	if err := st.Done(s); err != nil {
		d.logger.With(map[string]any{"error": err}).Error("text turn commit rejected")
	}
	_ = resp.Fragments.Done(&fragments.TextFragment{Text: fullText})
}

// dispatchTool resolves and executes the handler for one tool invocation.
// Handler failures never escape: they are converted to a generic error
// fragment and the state handle is left for the deferred Seal, which
// guarantees the log was either committed with a complete call/result pair
// or not touched at all.
func (d *Dispatcher) dispatchTool(ctx context.Context, st *State, resp *TurnResponse, call core.LLMToolCall) (fragment core.Fragment) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.With(map[string]any{"tool": call.ToolId, "panic": r}).Error("tool handler panicked")
			fragment = &fragments.ErrorFragment{Message: "Something went wrong, please try again!"}
		}
	}()

	yield := func(f core.Fragment) {
		_ = resp.Fragments.Update(f)
	}
	tc := &toolCall{
		ctx:    ctx,
		state:  st,
		callID: call.CallID,
		args:   call.Parameters,
		yield:  yield,
	}
	if tc.callID == "" {
		tc.callID = core.NewID()
	}

	switch call.ToolId {
	case toolGetYoutubeLength:
		return d.handleGetYoutubeLength(tc)
	case toolGetConversionEvent:
		return d.handleGetConversionEvent(tc)
	case toolGetCaptionerWorkerEvent:
		return d.handleGetCaptionerWorkerEvent(tc)
	case toolShowVoiceConversionUI:
		return d.handleShowVoiceConversionUI(tc)
	case toolShowCaptionerWorkerUI:
		return d.handleShowCaptionerWorkerUI(tc)
	default:
		d.logger.With(map[string]any{"tool": call.ToolId}).Warn("model requested unknown tool")
		return &fragments.ErrorFragment{Message: "Something went wrong, please try again!"}
	}
}

// buildLLMContext converts the authoritative log into the model-visible
// input. Structured tool content round-trips as provider tool calls and tool
// messages so the model can follow its own earlier invocations.
func buildLLMContext(s core.AIState) core.LLMContext {
	msgs := make([]core.LLMMessage, 0, len(s.Messages))
	for _, m := range s.Messages {
		switch {
		case len(m.ToolContent) == 0:
			msgs = append(msgs, core.LLMMessage{
				Role:    core.LLMMessageRole(m.Role),
				Message: m.Content,
			})
		case m.Role == core.MessageRoleAssistant:
			calls := make([]core.LLMToolCall, 0, len(m.ToolContent))
			for _, tc := range m.ToolContent {
				if tc.Type != core.ToolContentTypeCall {
					continue
				}
				calls = append(calls, core.LLMToolCall{
					CallID:     tc.ToolCallID,
					ToolId:     tc.ToolName,
					Parameters: tc.Args,
				})
			}
			msgs = append(msgs, core.LLMMessage{
				Role:      core.LLMMessageRoleAssistant,
				ToolCalls: calls,
			})
		case m.Role == core.MessageRoleTool:
			for _, tc := range m.ToolContent {
				if tc.Type != core.ToolContentTypeResult {
					continue
				}
				payload, err := sonic.MarshalString(tc.Result)
				if err != nil {
					payload = "{}"
				}
				msgs = append(msgs, core.LLMMessage{
					Role:       core.LLMMessageRoleTool,
					Message:    payload,
					ToolCallID: tc.ToolCallID,
					ToolName:   tc.ToolName,
				})
			}
		}
	}
	return core.LLMContext{
		System:   SYSTEM_PROMPT,
		Messages: msgs,
		Tools:    Tools,
	}
}
