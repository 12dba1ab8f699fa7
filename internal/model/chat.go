// Package model 定义了请求/响应结构体与核心数据模型。
package model

import "fmt"

// 聊天消息的角色标签，与请求体中的 type 字段对应。
const (
	RoleHuman     = "human"
	RoleAssistant = "assistant"
)

// ChatTurn 代表调用方提交的一轮历史消息。
type ChatTurn struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Validate 校验角色标签。未知标签在请求边界被显式拒绝，而不是静默归类。
func (t ChatTurn) Validate() error {
	switch t.Type {
	case RoleHuman, RoleAssistant:
		return nil
	default:
		return fmt.Errorf("未知的聊天角色标签: %q", t.Type)
	}
}

// ValidateHistory 校验整段历史消息。
func ValidateHistory(history []ChatTurn) error {
	for _, turn := range history {
		if err := turn.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ChatRequest 定义了 /chat/ 接口的请求体。历史消息可选，默认为空。
type ChatRequest struct {
	Question    string     `json:"question" binding:"required"`
	ChatHistory []ChatTurn `json:"chat_history"`
}

// ChatResponse 定义了 /chat/ 接口的响应体。
type ChatResponse struct {
	Answer string `json:"answer"`
}

// UploadResponse 定义了 /upload/ 接口的成功响应体。
type UploadResponse struct {
	Message  string `json:"message"`
	FileName string `json:"file_name"`
}

// ErrorResponse 是所有接口统一的错误响应体。
type ErrorResponse struct {
	Detail string `json:"detail"`
}
