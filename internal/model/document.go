package model

// Chunk 代表分块管道输出的一个文本窗口，携带回溯源文档的元数据。
// FileName 与 Page 仅作引用标注，不代表归属关系。
type Chunk struct {
	Text     string
	FileName string
	Page     int
}

// EsDocument 定义了存储在 Elasticsearch 向量索引中的文档结构。
type EsDocument struct {
	VectorID     string    `json:"vector_id"` // 唯一标识，例如 ingestId + chunkId
	FileName     string    `json:"file_name"`
	Page         int       `json:"page"`
	ChunkID      int       `json:"chunk_id"`
	TextContent  string    `json:"text_content"`
	Vector       []float32 `json:"vector"` // 文本内容的向量表示
	ModelVersion string    `json:"model_version"`
}
