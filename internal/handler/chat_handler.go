package handler

import (
	"net/http"

	"finreport-rag-go/internal/model"
	"finreport-rag-go/internal/service"
	"finreport-rag-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ChatHandler 负责处理问答请求。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler 实例。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat 处理 POST /chat/ 请求：在边界校验历史消息的角色标签，
// 之后将任何管道失败压平为统一的 500 响应。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "Invalid request payload: " + err.Error()})
		return
	}

	if err := model.ValidateHistory(req.ChatHistory); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: err.Error()})
		return
	}

	answer, err := h.chatService.Answer(c.Request.Context(), req.Question, req.ChatHistory)
	if err != nil {
		log.Error("Chat: 问答管道失败", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "An unexpected error occurred: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.ChatResponse{Answer: answer})
}
