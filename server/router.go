package server

import (
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	ChatHandler *ChatHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()

	r.GET("/healthcheck", HealthCheck)

	api := r.Group("/api")
	{
		api.POST("/chat", cfg.ChatHandler.SubmitMessage)
		api.GET("/chat/:chatId", cfg.ChatHandler.GetChat)
		api.POST("/conversion", cfg.ChatHandler.StartConversion)
		api.POST("/captioner", cfg.ChatHandler.StartCaptioner)
	}

	r.GET("/ws/chat/:chatId", cfg.ChatHandler.ServeWS)

	return r
}

type Server struct {
	Engine *gin.Engine
}

func NewServer(cfg RouterConfig) *Server {
	return &Server{Engine: NewRouter(cfg)}
}

func (s *Server) Run(address string) error {
	return s.Engine.Run(address)
}
