package chat

import (
	"fmt"

	"github.com/jackdwave/ai-chatbot/core"
	"github.com/jackdwave/ai-chatbot/fragments"
	"github.com/jackdwave/ai-chatbot/pipeline"
	"github.com/jackdwave/ai-chatbot/youtube"
)

// UIStateFrom projects the authoritative log into its display-only form:
// system messages are dropped, user and assistant text becomes plain
// fragments, and tool results are re-rendered from their structured payloads.
// The projection is derived data; it never feeds back into the model.
func UIStateFrom(ai core.AIState) core.UIState {
	ui := make(core.UIState, 0, len(ai.Messages))
	for i, msg := range ai.Messages {
		if msg.Role == core.MessageRoleSystem {
			continue
		}

		var display core.Fragment
		switch {
		case msg.Role == core.MessageRoleUser:
			display = &fragments.UserFragment{Text: msg.Content}
		case msg.Role == core.MessageRoleTool && len(msg.ToolContent) > 0:
			display = toolResultFragment(msg.ToolContent[0])
		case msg.Role == core.MessageRoleAssistant && msg.Content != "":
			display = &fragments.TextFragment{Text: msg.Content}
		}
		if display == nil {
			continue
		}

		ui = append(ui, core.UIMessage{
			ID:      fmt.Sprintf("%s-%d", ai.ChatID, i),
			Display: display,
		})
	}
	return ui
}

func toolResultFragment(tc core.ToolContent) core.Fragment {
	if tc.Type != core.ToolContentTypeResult {
		return nil
	}
	switch tc.ToolName {
	case toolGetYoutubeLength:
		return &fragments.VideoFragment{
			EmbedURL:          youtube.EmbedLink(stringArg(tc.Result, "youtubeUrl")),
			DurationInSeconds: intArg(tc.Result, "durationInSeconds"),
		}
	case toolShowVoiceConversionUI:
		return &fragments.ConversionFormFragment{
			Status:      fragments.FormStatusRequiresAction,
			VoiceModels: pipeline.VoiceModels,
			VoiceModel:  stringArg(tc.Result, "aiVoiceModel"),
			YoutubeURL:  stringArg(tc.Result, "youtubeUrl"),
		}
	case toolShowCaptionerWorkerUI:
		return &fragments.CaptionerFormFragment{
			Status:             fragments.FormStatusRequiresAction,
			YoutubeURL:         stringArg(tc.Result, "youtubeUrl"),
			DetectLanguages:    SupportedDetectLanguages,
			TranslateLanguages: SupportedTranslateLanguages,
		}
	case toolGetConversionEvent:
		return &fragments.TextFragment{
			Text: fmt.Sprintf("conversion id: %s", stringArg(tc.Result, "conversionId")),
		}
	case toolGetCaptionerWorkerEvent:
		return &fragments.TextFragment{
			Text: fmt.Sprintf("captioner event id: %s", stringArg(tc.Result, "eventId")),
		}
	}
	return nil
}

func stringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]any, key string) int {
	if args == nil {
		return 0
	}
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
