package model

import "errors"

// 管道各阶段的哨兵错误。内部组件用 %w 包装这些哨兵向上传递，
// 传输层统一压平为 500 响应，但错误链内仍可区分失败阶段。
var (
	ErrStorage     = errors.New("storage failure")
	ErrChunking    = errors.New("chunking failure")
	ErrEmbedding   = errors.New("embedding failure")
	ErrVectorStore = errors.New("vector store failure")
	ErrGeneration  = errors.New("generation failure")
)
