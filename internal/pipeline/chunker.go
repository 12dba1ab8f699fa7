// Package pipeline 定义了文档加载与分块的核心流程。
package pipeline

import (
	"context"
	"fmt"
	"os"

	"finreport-rag-go/internal/model"
	"finreport-rag-go/pkg/log"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

// Chunker 将 PDF 文档按页加载后做递归字符切分：优先在段落边界切分，
// 其次是句子/词边界，最后回退到裸字符截断。页边界不会作为分块边界保留。
type Chunker struct {
	splitter textsplitter.RecursiveCharacter
}

// NewChunker 创建一个 Chunker。chunkSize 是目标分块大小（字符），
// chunkOverlap 是相邻分块间的重叠长度。
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	return &Chunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// LoadPDF 加载指定路径的 PDF 并切分为有序分块，每个分块携带
// 源文件名与页码元数据以供引用标注。
func (c *Chunker) LoadPDF(ctx context.Context, filePath, fileName string) ([]model.Chunk, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("打开 PDF 文件失败: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("读取 PDF 文件信息失败: %w", err)
	}

	loader := documentloaders.NewPDF(f, stat.Size())
	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("解析 PDF 失败: %w", err)
	}
	log.Infof("[Chunker] PDF 加载完成, file: %s, pages: %d", fileName, len(docs))

	split, err := textsplitter.SplitDocuments(c.splitter, docs)
	if err != nil {
		return nil, fmt.Errorf("切分文档失败: %w", err)
	}

	chunks := toChunks(split, fileName)
	log.Infof("[Chunker] 文本分块完成, file: %s, chunks: %d", fileName, len(chunks))
	return chunks, nil
}

// toChunks 将切分后的文档转换为携带引用元数据的分块序列，保持文档顺序。
func toChunks(docs []schema.Document, fileName string) []model.Chunk {
	chunks := make([]model.Chunk, 0, len(docs))
	for _, doc := range docs {
		chunk := model.Chunk{
			Text:     doc.PageContent,
			FileName: fileName,
		}
		if page, ok := doc.Metadata["page"].(int); ok {
			chunk.Page = page
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
