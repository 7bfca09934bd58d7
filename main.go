package main

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/jackdwave/ai-chatbot/backend"
	"github.com/jackdwave/ai-chatbot/chat"
	"github.com/jackdwave/ai-chatbot/config"
	"github.com/jackdwave/ai-chatbot/core"
	"github.com/jackdwave/ai-chatbot/server"
	"github.com/jackdwave/ai-chatbot/services/openai/llm"
	"github.com/jackdwave/ai-chatbot/watch"
	"github.com/jackdwave/ai-chatbot/youtube"
)

// newLogrusLogger adapts the core logger onto logrus so every package logs
// through the same structured sink.
func newLogrusLogger() *core.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})

	return core.NewLogger(func(level string, msg string, attrs map[string]interface{}) {
		entry := l.WithFields(logrus.Fields(attrs))
		switch level {
		case "DEBUG":
			entry.Debug(msg)
		case "INFO":
			entry.Info(msg)
		case "WARN":
			entry.Warn(msg)
		case "ERROR":
			entry.Error(msg)
		case "FATAL":
			entry.Fatal(msg)
		default:
			entry.Info(msg)
		}
	})
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := newLogrusLogger()
	core.SetLogger(*logger)

	llmService, err := llm.NewOpenAILLMService(llm.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
	})
	if err != nil {
		logger.Fatal("openai service init failed", "error", err)
	}

	backendClient := backend.NewClient(cfg.BackendEndpoint)
	youtubeClient := youtube.NewClient(cfg.YouTubeAPIKey, "")

	pollCfg := watch.DefaultConfig()
	pollCfg.StalenessThreshold = cfg.StalenessThreshold
	poller := watch.NewPoller(backendClient, pollCfg, logger)

	store := chat.NewStateStore()
	dispatcher := chat.NewDispatcher(store, llmService, poller, youtubeClient, logger)
	actions := chat.NewActions(store, backendClient, logger)

	hub := server.NewHub(logger)
	handler := server.NewChatHandler(dispatcher, actions, store, hub, logger)

	srv := server.NewServer(server.RouterConfig{ChatHandler: handler})
	logger.Info("chat server listening", "addr", cfg.ListenAddr)
	if err := srv.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("server exited", "error", err)
	}
}
