package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/jackdwave/ai-chatbot/backend"
	"github.com/jackdwave/ai-chatbot/core"
	"github.com/jackdwave/ai-chatbot/fragments"
	"github.com/jackdwave/ai-chatbot/pipeline"
)

const actionSettleDelay = 3 * time.Second

// ConversionSubmission is the confirmed voice-conversion form.
type ConversionSubmission struct {
	YoutubeURL string `json:"youtubeUrl"`
	VoiceModel string `json:"voiceModel"`
	Pitch      int    `json:"pitch"`
	StartTime  int    `json:"startTime"`
	EndTime    int    `json:"endTime"`
}

// CaptionerSubmission is the confirmed captioner form.
type CaptionerSubmission struct {
	YoutubeURL         string   `json:"youtubeUrl"`
	DetectLanguages    []string `json:"detectLanguages"`
	TranslateLanguages []string `json:"translateLanguages"`
}

// ActionResponse is the live view of a fire-and-forget submission. Converting
// flips to false once the submission settled; Message resolves to the created
// workflow card or an error card.
type ActionResponse struct {
	MessageID  string
	Converting *core.Streamable[bool]
	Message    *core.Streamable[core.Fragment]
}

// Actions hosts the out-of-band submissions triggered by form fragments,
// outside the model-driven turn loop.
type Actions struct {
	store   *StateStore
	backend *backend.Client
	logger  *core.Logger
	settle  time.Duration
}

func NewActions(store *StateStore, client *backend.Client, logger *core.Logger) *Actions {
	return &Actions{
		store:   store,
		backend: client,
		logger:  logger,
		settle:  actionSettleDelay,
	}
}

// StartConversion submits a 5-step voice-conversion workflow. The submission
// itself is synchronous so a rejected payload surfaces to the caller
// immediately; the confirmation card and the log append settle in the
// background.
func (a *Actions) StartConversion(ctx context.Context, chatID string, sub ConversionSubmission) (*ActionResponse, error) {
	wf := pipeline.NewConversionWorkflow(pipeline.ConversionRequest{
		SourceURL:  sub.YoutubeURL,
		StartTime:  sub.StartTime,
		EndTime:    sub.EndTime,
		Pitch:      sub.Pitch,
		VoiceModel: sub.VoiceModel,
	})
	ref, err := a.backend.AddWorkflow(ctx, wf)
	if err != nil {
		a.logger.With(map[string]any{"chat_id": chatID, "error": err}).Error("workflow submission failed")
		return nil, fmt.Errorf("chat: submit conversion workflow: %w", err)
	}

	resp := newActionResponse()
	log := a.logger.With(map[string]any{"chat_id": chatID, "event_id": ref.EventID})
	log.Info("voice conversion workflow created")

	go func() {
		bg := context.WithoutCancel(ctx)
		sleepFor(bg, a.settle)

		_ = resp.Message.Done(&fragments.WorkflowCreatedFragment{
			EventID:       ref.EventID,
			Summary:       fmt.Sprintf("Voice conversion workflow created. Conversion id: %s", ref.EventID),
			FollowUpInput: fmt.Sprintf("I want to get conversion result with conversion id %s.", ref.EventID),
		})
		_ = resp.Converting.Done(false)

		a.appendSystemNote(chatID, fmt.Sprintf(
			"[User has successfully created voice conversion workflow with id: %s, youtube video url: %s using ai voice model: %s]",
			ref.EventID, sub.YoutubeURL, sub.VoiceModel,
		))
	}()
	return resp, nil
}

// StartCaptioner submits a captioner worker. Unlike StartConversion the whole
// submission runs in the background; failures surface through the message
// stream only.
func (a *Actions) StartCaptioner(ctx context.Context, chatID string, sub CaptionerSubmission) *ActionResponse {
	resp := newActionResponse()
	log := a.logger.With(map[string]any{"chat_id": chatID})

	go func() {
		bg := context.WithoutCancel(ctx)

		worker := pipeline.NewCaptionerWorker(pipeline.CaptionerRequest{
			FilePath:           sub.YoutubeURL,
			DetectLanguages:    sub.DetectLanguages,
			TranslateLanguages: sub.TranslateLanguages,
		})
		ref, err := a.backend.AddCaptionerWorker(bg, worker)
		if err != nil {
			log.With(map[string]any{"error": err}).Error("captioner submission failed")
			_ = resp.Message.Done(&fragments.ErrorFragment{Message: "Something went wrong, please try again!"})
			_ = resp.Converting.Done(false)
			return
		}
		log.With(map[string]any{"event_id": ref.EventID}).Info("captioner worker created")

		sleepFor(bg, a.settle)

		_ = resp.Message.Done(&fragments.WorkflowCreatedFragment{
			EventID:       ref.EventID,
			Summary:       fmt.Sprintf("Captioner worker created. Event id: %s", ref.EventID),
			FollowUpInput: fmt.Sprintf("I want to get captioner worker event result with event id %s.", ref.EventID),
		})
		_ = resp.Converting.Done(false)

		a.appendSystemNote(chatID, fmt.Sprintf(
			"[User has successfully created captioner workflow with id: %s, youtube video url: %s]",
			ref.EventID, sub.YoutubeURL,
		))
	}()
	return resp
}

func newActionResponse() *ActionResponse {
	resp := &ActionResponse{
		MessageID:  core.NewID(),
		Converting: core.NewStreamable[bool](),
		Message:    core.NewStreamable[core.Fragment](),
	}
	_ = resp.Converting.Update(true)
	_ = resp.Message.Update(&fragments.ProcessingFragment{ShowAvatar: true})
	return resp
}

// appendSystemNote commits one system message so the model sees the
// out-of-band submission on the next turn.
func (a *Actions) appendSystemNote(chatID, note string) {
	st := a.store.Begin(chatID)
	s := st.Get()
	s.Messages = append(s.Messages, core.Message{
		ID:      core.NewID(),
		Role:    core.MessageRoleSystem,
		Content: note,
	})
	if err := st.Done(s); err != nil {
		a.logger.With(map[string]any{"chat_id": chatID, "error": err}).Error("system note commit rejected")
	}
}

func sleepFor(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
