package service

import (
	"context"
	"fmt"
	"strings"

	"finreport-rag-go/internal/model"
	"finreport-rag-go/pkg/embedding"
	"finreport-rag-go/pkg/es"
	"finreport-rag-go/pkg/llm"
	"finreport-rag-go/pkg/log"

	"github.com/tmc/langchaingo/prompts"
)

// noHistoryText 是空历史的固定占位文本，属于对外可观察的契约。
const noHistoryText = "No previous conversation."

// answerPromptTemplate 指示模型严格基于检索上下文作答，使用结构化排版，
// 上下文不足时显式声明，不做推测。
const answerPromptTemplate = `You are an expert financial analyst and research assistant.
Your task is to provide clear, data-driven, and well-structured answers based strictly on the information provided in the context.
If the context is insufficient to answer the question, explicitly state that.

---
**Guidelines:**
1. Use **Markdown formatting** throughout your response.
2. When presenting:
   - **Financial data, ratios, or comparisons**, use **Markdown tables**.
   - **Lists of factors, pros/cons, or steps**, use **bulleted lists**.
3. Be **concise but analytical** — highlight insights, implications, and reasoning.
4. If relevant, mention key **financial metrics**, **industry benchmarks**, or **risk factors** based on the context.
5. Avoid speculation — only use information grounded in the provided context.
6. Include a short **summary or recommendation** at the end when applicable.

---
**Inputs:**
- **Context:** {context}  
- **Chat History:** {chat_history}
- **Question:** {question}

---
**Output Requirements:**
- Provide a **clear, structured, and actionable** financial analysis or answer.
- If data is missing, respond with: *“The context does not provide enough information to answer this question.”*
`

// Retriever 抽象了向量存储的相似度检索能力，由 es.Client 实现。
type Retriever interface {
	Search(ctx context.Context, queryVector []float32, k int) ([]es.SearchHit, error)
}

// ChatService 定义了问答操作的接口。
type ChatService interface {
	// Answer 基于检索到的上下文与调用方提交的历史消息回答问题。
	Answer(ctx context.Context, question string, history []model.ChatTurn) (string, error)
}

type chatService struct {
	embeddingClient embedding.Client
	retriever       Retriever
	llmClient       llm.Client
	topK            int
	prompt          prompts.PromptTemplate
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(embeddingClient embedding.Client, retriever Retriever, llmClient llm.Client, topK int) ChatService {
	return &chatService{
		embeddingClient: embeddingClient,
		retriever:       retriever,
		llmClient:       llmClient,
		topK:            topK,
		// 模板占位符为 {context} 风格，使用 f-string 插值
		prompt: prompts.PromptTemplate{
			Template:       answerPromptTemplate,
			InputVariables: []string{"context", "chat_history", "question"},
			TemplateFormat: prompts.TemplateFormatFString,
		},
	}
}

// Answer 按固定顺序执行问答管道：检索 → 组装上下文与历史 → 填充模板 → 生成。
// 检索结果为空时不短路，继续让模型按模板指示声明上下文不足。
func (s *chatService) Answer(ctx context.Context, question string, history []model.ChatTurn) (string, error) {
	log.Infof("[ChatService] 开始处理问题: %s", question)

	// 1. 向量化问题并检索
	queryVector, err := s.embeddingClient.CreateEmbedding(ctx, question)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrEmbedding, err)
	}
	hits, err := s.retriever.Search(ctx, queryVector, s.topK)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrVectorStore, err)
	}
	log.Infof("[ChatService] 检索到 %d 条上下文分块", len(hits))

	// 2. 组装上下文与历史
	contextText := formatContext(hits)
	historyText := formatHistory(history)

	// 3. 填充模板
	promptText, err := s.prompt.Format(map[string]any{
		"context":      contextText,
		"chat_history": historyText,
		"question":     question,
	})
	if err != nil {
		return "", fmt.Errorf("%w: 填充 prompt 模板失败: %v", model.ErrGeneration, err)
	}

	// 4. 生成回答，原样返回
	answer, err := s.llmClient.Generate(ctx, promptText)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrGeneration, err)
	}
	log.Info("[ChatService] 回答生成完成")
	return answer, nil
}

// formatContext 按检索返回的相似度排序拼接分块文本，相邻分块之间以空行分隔。
// 零命中时返回空字符串。
func formatContext(hits []es.SearchHit) string {
	texts := make([]string, 0, len(hits))
	for _, hit := range hits {
		texts = append(texts, hit.Document.TextContent)
	}
	return strings.Join(texts, "\n\n")
}

// formatHistory 将历史消息按调用方提交的顺序逐行渲染为
// "Human: ..." / "Assistant: ..."，空历史返回固定占位文本。
func formatHistory(history []model.ChatTurn) string {
	if len(history) == 0 {
		return noHistoryText
	}
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		role := "Assistant"
		if turn.Type == model.RoleHuman {
			role = "Human"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, turn.Content))
	}
	return strings.Join(lines, "\n")
}
