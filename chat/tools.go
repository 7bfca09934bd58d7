package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackdwave/ai-chatbot/core"
	"github.com/jackdwave/ai-chatbot/fragments"
	"github.com/jackdwave/ai-chatbot/pipeline"
	"github.com/jackdwave/ai-chatbot/watch"
	"github.com/jackdwave/ai-chatbot/youtube"
)

// toolCall bundles everything a handler needs for one invocation: the turn's
// state handle, the model-supplied arguments, and a yield function that
// pushes intermediate fragments to the live stream.
type toolCall struct {
	ctx    context.Context
	state  *State
	callID string
	args   map[string]any
	yield  func(core.Fragment)
}

func (tc *toolCall) stringArg(key string) string { return stringArg(tc.args, key) }

// recordToolPair commits the tool-call and its tool-result to the log as one
// atomic append. This is the only place tool content enters the state, which
// is how the call/result pairing invariant holds on every path.
func (tc *toolCall) recordToolPair(toolName string, result map[string]any) {
	s := tc.state.Get()
	s.Messages = append(s.Messages,
		core.Message{
			ID:   core.NewID(),
			Role: core.MessageRoleAssistant,
			ToolContent: []core.ToolContent{{
				Type:       core.ToolContentTypeCall,
				ToolName:   toolName,
				ToolCallID: tc.callID,
				Args:       tc.args,
			}},
		},
		core.Message{
			ID:   core.NewID(),
			Role: core.MessageRoleTool,
			ToolContent: []core.ToolContent{{
				Type:       core.ToolContentTypeResult,
				ToolName:   toolName,
				ToolCallID: tc.callID,
				Result:     result,
			}},
		},
	)
	if err := tc.state.Done(s); err != nil {
		core.GetLogger().With(map[string]any{"tool": toolName, "error": err}).Error("tool pair commit rejected")
	}
}

func (d *Dispatcher) handleGetYoutubeLength(tc *toolCall) core.Fragment {
	rawURL := tc.stringArg("youtubeUrl")
	videoID := youtube.ExtractVideoID(rawURL)
	if videoID == "" {
		return &fragments.ErrorFragment{Message: "Invalid youtube url"}
	}

	tc.yield(&fragments.ProcessingFragment{ShowAvatar: true})

	seconds, err := d.duration.Duration(tc.ctx, videoID)
	if err != nil {
		d.logger.With(map[string]any{"video_id": videoID, "error": err}).Error("video length lookup failed")
		return &fragments.ErrorFragment{Message: "Something went wrong, please try again!"}
	}

	tc.recordToolPair(toolGetYoutubeLength, map[string]any{
		"youtubeUrl":        rawURL,
		"durationInSeconds": seconds,
	})
	return &fragments.VideoFragment{
		EmbedURL:          youtube.EmbedLink(rawURL),
		DurationInSeconds: seconds,
	}
}

func (d *Dispatcher) handleGetConversionEvent(tc *toolCall) core.Fragment {
	conversionID := tc.stringArg("conversionId")
	tc.yield(&fragments.ProcessingFragment{ShowAvatar: true})

	if err := d.poller.WaitRegistered(tc.ctx, conversionID, tc.yield); err != nil {
		tc.recordToolPair(toolGetConversionEvent, map[string]any{"conversionId": conversionID})
		if errors.Is(err, watch.ErrAmbiguousTimeout) {
			return &fragments.TextFragment{
				Text: "Your conversion is still processing, please try again later.",
			}
		}
		d.logger.With(map[string]any{"conversion_id": conversionID, "error": err}).Error("conversion registration wait failed")
		return &fragments.ErrorFragment{
			Message: fmt.Sprintf("Failed to fetch conversion event with id: %s", conversionID),
		}
	}

	tc.recordToolPair(toolGetConversionEvent, map[string]any{"conversionId": conversionID})

	final, job := d.poller.AwaitConversion(tc.ctx, conversionID, tc.yield)
	d.logger.With(map[string]any{"conversion_id": conversionID, "status": string(job.Status)}).Info("conversion event resolved")
	return final
}

func (d *Dispatcher) handleGetCaptionerWorkerEvent(tc *toolCall) core.Fragment {
	eventID := tc.stringArg("eventId")
	tc.yield(&fragments.ProcessingFragment{ShowAvatar: true})

	tc.recordToolPair(toolGetCaptionerWorkerEvent, map[string]any{"eventId": eventID})

	final, job := d.poller.AwaitCaptioner(tc.ctx, eventID, tc.yield)
	d.logger.With(map[string]any{"event_id": eventID, "status": string(job.Status)}).Info("captioner event resolved")
	return final
}

func (d *Dispatcher) handleShowVoiceConversionUI(tc *toolCall) core.Fragment {
	voiceModel := tc.stringArg("aiVoiceModel")
	if !pipeline.IsKnownModel(voiceModel) {
		voiceModel = ""
	}
	youtubeURL := tc.stringArg("youtubeUrl")

	tc.recordToolPair(toolShowVoiceConversionUI, map[string]any{
		"aiVoiceModel": voiceModel,
		"youtubeUrl":   youtubeURL,
	})
	return &fragments.ConversionFormFragment{
		Status:      fragments.FormStatusRequiresAction,
		VoiceModels: pipeline.VoiceModels,
		VoiceModel:  voiceModel,
		YoutubeURL:  youtubeURL,
	}
}

func (d *Dispatcher) handleShowCaptionerWorkerUI(tc *toolCall) core.Fragment {
	youtubeURL := tc.stringArg("youtubeUrl")

	tc.recordToolPair(toolShowCaptionerWorkerUI, map[string]any{
		"youtubeUrl": youtubeURL,
	})
	return &fragments.CaptionerFormFragment{
		Status:             fragments.FormStatusRequiresAction,
		YoutubeURL:         youtubeURL,
		DetectLanguages:    SupportedDetectLanguages,
		TranslateLanguages: SupportedTranslateLanguages,
	}
}
