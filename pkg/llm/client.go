// Package llm provides a client for interacting with Large Language Models.
package llm

import (
	"context"
	"fmt"

	"finreport-rag-go/internal/config"
	"finreport-rag-go/pkg/log"

	"github.com/tmc/langchaingo/llms"
	hfllm "github.com/tmc/langchaingo/llms/huggingface"
)

// Client defines the interface for an LLM client.
type Client interface {
	// Generate 将完整 prompt 发送给托管模型，返回生成的原始文本。
	Generate(ctx context.Context, prompt string) (string, error)
}

// huggingfaceClient 调用 HuggingFace 托管推理端点的 text-generation 任务。
type huggingfaceClient struct {
	llm *hfllm.LLM
	cfg config.LLMConfig
}

// NewClient 根据配置创建 LLM 客户端，模型由 repo_id 在进程启动时一次性选定。
func NewClient(cfg config.LLMConfig) (Client, error) {
	llm, err := hfllm.New(
		hfllm.WithToken(cfg.APIKey),
		hfllm.WithModel(cfg.RepoID),
	)
	if err != nil {
		return nil, fmt.Errorf("初始化 HuggingFace LLM 客户端失败: %w", err)
	}
	return &huggingfaceClient{llm: llm, cfg: cfg}, nil
}

// Generate 以固定的解码参数（贪心解码、max_new_tokens 上限）生成回答。
func (c *huggingfaceClient) Generate(ctx context.Context, prompt string) (string, error) {
	log.Infof("[LLMClient] 开始调用 LLM, repo_id: %s, prompt_len: %d", c.cfg.RepoID, len(prompt))

	answer, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithModel(c.cfg.RepoID),
		llms.WithMaxTokens(c.cfg.MaxNewTokens),
		llms.WithTemperature(0),
		llms.WithTopP(1),
	)
	if err != nil {
		log.Errorf("[LLMClient] 调用 LLM 失败, error: %v", err)
		return "", fmt.Errorf("failed to call llm: %w", err)
	}

	log.Infof("[LLMClient] LLM 调用成功, answer_len: %d", len(answer))
	return answer, nil
}
