// Package embedding provides a client for interacting with embedding models.
package embedding

import (
	"context"
	"fmt"

	"finreport-rag-go/internal/config"
	"finreport-rag-go/pkg/log"

	hfembed "github.com/tmc/langchaingo/embeddings/huggingface"
	hfllm "github.com/tmc/langchaingo/llms/huggingface"
)

// Client defines the interface for an embedding client.
type Client interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// huggingfaceClient 通过 HuggingFace 推理端点的 feature-extraction 任务生成向量。
// 模型在进程启动时固定，同一模型对相同输入产出确定性的向量。
type huggingfaceClient struct {
	embedder *hfembed.Huggingface
	model    string
}

// NewClient 根据配置创建 embedding 客户端。
func NewClient(cfg config.EmbeddingConfig) (Client, error) {
	llm, err := hfllm.New(
		hfllm.WithToken(cfg.APIKey),
		hfllm.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("初始化 HuggingFace 客户端失败: %w", err)
	}

	embedder, err := hfembed.NewHuggingface(
		hfembed.WithClient(*llm),
		hfembed.WithModel(cfg.Model),
		hfembed.WithTask("feature-extraction"),
	)
	if err != nil {
		return nil, fmt.Errorf("创建 embedder 失败: %w", err)
	}

	return &huggingfaceClient{embedder: embedder, model: cfg.Model}, nil
}

// CreateEmbedding 将一段文本向量化。
func (c *huggingfaceClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vector, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		log.Errorf("[EmbeddingClient] 调用 Embedding API 失败, model: %s, error: %v", c.model, err)
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("received empty embedding from api")
	}
	return vector, nil
}
