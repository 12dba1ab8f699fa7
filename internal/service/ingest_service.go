// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"

	"finreport-rag-go/internal/model"
	"finreport-rag-go/pkg/embedding"
	"finreport-rag-go/pkg/log"

	"github.com/google/uuid"
)

// ObjectUploader 抽象了对象存储的上传能力，由 storage.Store 实现。
type ObjectUploader interface {
	UploadFile(ctx context.Context, objectName, filePath, contentType string) error
}

// Indexer 抽象了向量索引的写入能力，由 es.Client 实现。
type Indexer interface {
	IndexChunk(ctx context.Context, doc model.EsDocument) error
}

// DocumentLoader 抽象了文档加载与分块能力，由 pipeline.Chunker 实现。
type DocumentLoader interface {
	LoadPDF(ctx context.Context, filePath, fileName string) ([]model.Chunk, error)
}

// IngestService 定义了文档摄取操作的接口。
type IngestService interface {
	// IngestPDF 上传原始文件并将其内容分块、向量化、写入向量索引，
	// 返回产生的分块数量。任一阶段失败即整体失败，不回滚已完成的上传。
	IngestPDF(ctx context.Context, filePath, fileName string) (int, error)
}

type ingestService struct {
	store           ObjectUploader
	loader          DocumentLoader
	embeddingClient embedding.Client
	indexer         Indexer
	embeddingModel  string
}

// NewIngestService 创建一个新的 IngestService 实例。
func NewIngestService(store ObjectUploader, loader DocumentLoader, embeddingClient embedding.Client, indexer Indexer, embeddingModel string) IngestService {
	return &ingestService{
		store:           store,
		loader:          loader,
		embeddingClient: embeddingClient,
		indexer:         indexer,
		embeddingModel:  embeddingModel,
	}
}

// IngestPDF 按固定顺序执行摄取管道：对象存储上传 → 分块 → 逐块向量化 → 逐块索引。
func (s *ingestService) IngestPDF(ctx context.Context, filePath, fileName string) (int, error) {
	log.Infof("[IngestService] 开始处理文件: %s", fileName)

	// 1. 上传原始字节到对象存储，同名覆盖
	objectName := fmt.Sprintf("public/%s", fileName)
	log.Infof("[IngestService] 步骤1: 上传原始文件到对象存储, object: %s", objectName)
	if err := s.store.UploadFile(ctx, objectName, filePath, "application/pdf"); err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrStorage, err)
	}

	// 2. 加载并分块
	log.Info("[IngestService] 步骤2: 加载并切分文档")
	chunks, err := s.loader.LoadPDF(ctx, filePath, fileName)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrChunking, err)
	}
	log.Infof("[IngestService] 步骤2: 文档切分为 %d 个分块", len(chunks))

	// 3. 逐块向量化并写入向量索引。
	// 每次摄取使用新的 ingestID，重复摄取同一文件会产生重复行（无去重）。
	ingestID := uuid.NewString()
	log.Infof("[IngestService] 步骤3: 开始向量化并索引, ingest_id: %s", ingestID)
	for i, chunk := range chunks {
		vector, err := s.embeddingClient.CreateEmbedding(ctx, chunk.Text)
		if err != nil {
			return 0, fmt.Errorf("%w: 分块 %d 向量化失败: %v", model.ErrEmbedding, i, err)
		}

		esDoc := model.EsDocument{
			VectorID:     fmt.Sprintf("%s_%d", ingestID, i),
			FileName:     chunk.FileName,
			Page:         chunk.Page,
			ChunkID:      i,
			TextContent:  chunk.Text,
			Vector:       vector,
			ModelVersion: s.embeddingModel,
		}
		if err := s.indexer.IndexChunk(ctx, esDoc); err != nil {
			return 0, fmt.Errorf("%w: 索引分块 %d 失败: %v", model.ErrVectorStore, i, err)
		}
	}

	log.Infof("[IngestService] 文件处理成功完成, file: %s, chunks: %d", fileName, len(chunks))
	return len(chunks), nil
}
