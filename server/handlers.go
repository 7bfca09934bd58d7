package server

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/jackdwave/ai-chatbot/chat"
	"github.com/jackdwave/ai-chatbot/core"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ChatHandler exposes the conversation over HTTP and websocket. Fragment
// streams are fanned out through the hub; the HTTP endpoints return ids the
// client correlates frames against.
type ChatHandler struct {
	dispatcher *chat.Dispatcher
	actions    *chat.Actions
	store      *chat.StateStore
	hub        *Hub
	logger     *core.Logger
}

func NewChatHandler(dispatcher *chat.Dispatcher, actions *chat.Actions, store *chat.StateStore, hub *Hub, logger *core.Logger) *ChatHandler {
	return &ChatHandler{
		dispatcher: dispatcher,
		actions:    actions,
		store:      store,
		hub:        hub,
		logger:     logger,
	}
}

type submitMessageReq struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content" binding:"required"`
}

// POST /api/chat
func (h *ChatHandler) SubmitMessage(c *gin.Context) {
	var req submitMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.ChatID == "" {
		req.ChatID = core.NewID()
	}

	resp := h.dispatcher.SubmitUserMessage(c.Request.Context(), req.ChatID, req.Content)
	go h.pump(req.ChatID, resp.MessageID, resp.Fragments)

	RespondOK(c, gin.H{"chatId": req.ChatID, "messageId": resp.MessageID})
}

type uiMessage struct {
	ID       string        `json:"id"`
	Kind     string        `json:"kind"`
	Fragment core.Fragment `json:"fragment"`
}

// GET /api/chat/:chatId
func (h *ChatHandler) GetChat(c *gin.Context) {
	chatID := c.Param("chatId")
	ui := chat.UIStateFrom(h.store.Snapshot(chatID))

	msgs := make([]uiMessage, 0, len(ui))
	for _, m := range ui {
		msgs = append(msgs, uiMessage{ID: m.ID, Kind: m.Display.Kind(), Fragment: m.Display})
	}
	RespondOK(c, gin.H{"chatId": chatID, "messages": msgs})
}

type conversionReq struct {
	ChatID     string `json:"chatId" binding:"required"`
	YoutubeURL string `json:"youtubeUrl" binding:"required"`
	VoiceModel string `json:"voiceModel" binding:"required"`
	Pitch      int    `json:"pitch"`
	StartTime  int    `json:"startTime"`
	EndTime    int    `json:"endTime"`
}

// POST /api/conversion
func (h *ChatHandler) StartConversion(c *gin.Context) {
	var req conversionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	resp, err := h.actions.StartConversion(c.Request.Context(), req.ChatID, chat.ConversionSubmission{
		YoutubeURL: req.YoutubeURL,
		VoiceModel: req.VoiceModel,
		Pitch:      req.Pitch,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
	if err != nil {
		RespondError(c, http.StatusBadGateway, "conversion_submit_failed", errors.Wrap(err, "submit conversion"))
		return
	}
	go h.pump(req.ChatID, resp.MessageID, resp.Message)

	RespondOK(c, gin.H{"chatId": req.ChatID, "messageId": resp.MessageID})
}

type captionerReq struct {
	ChatID             string   `json:"chatId" binding:"required"`
	YoutubeURL         string   `json:"youtubeUrl" binding:"required"`
	DetectLanguages    []string `json:"detectLanguages"`
	TranslateLanguages []string `json:"translateLanguages"`
}

// POST /api/captioner
func (h *ChatHandler) StartCaptioner(c *gin.Context) {
	var req captionerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if len(req.DetectLanguages) == 0 {
		req.DetectLanguages = chat.SupportedDetectLanguages
	}
	if len(req.TranslateLanguages) == 0 {
		req.TranslateLanguages = chat.SupportedTranslateLanguages
	}

	resp := h.actions.StartCaptioner(c.Request.Context(), req.ChatID, chat.CaptionerSubmission{
		YoutubeURL:         req.YoutubeURL,
		DetectLanguages:    req.DetectLanguages,
		TranslateLanguages: req.TranslateLanguages,
	})
	go h.pump(req.ChatID, resp.MessageID, resp.Message)

	RespondOK(c, gin.H{"chatId": req.ChatID, "messageId": resp.MessageID})
}

type inboundFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// GET /ws/chat/:chatId
func (h *ChatHandler) ServeWS(c *gin.Context) {
	chatID := c.Param("chatId")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.With(map[string]any{"chat_id": chatID, "error": err}).Error("websocket upgrade failed")
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, clientSendSize)}
	h.hub.register(chatID, cl)
	go cl.writePump()

	defer h.hub.unregister(chatID, cl)
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var in inboundFrame
		if err := sonic.Unmarshal(payload, &in); err != nil || in.Type != "message" || in.Content == "" {
			continue
		}

		resp := h.dispatcher.SubmitUserMessage(c.Request.Context(), chatID, in.Content)
		go h.pump(chatID, resp.MessageID, resp.Fragments)
	}
}

// pump drains one fragment stream into the hub. Every value becomes a
// fragment frame; once the stream is sealed the last value is re-sent as the
// done frame so late subscribers still see the terminal state.
func (h *ChatHandler) pump(chatID, messageID string, frags *core.Streamable[core.Fragment]) {
	for f := range frags.Values() {
		h.hub.Broadcast(chatID, fragmentFrame(messageID, f))
	}
	last, ok := frags.Value()
	if !ok {
		last = nil
	}
	h.hub.Broadcast(chatID, doneFrame(messageID, last))
}

// GET /healthcheck
func HealthCheck(c *gin.Context) {
	RespondOK(c, gin.H{"status": "ok"})
}
