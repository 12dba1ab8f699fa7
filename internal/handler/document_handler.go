package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"finreport-rag-go/internal/model"
	"finreport-rag-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// downloadURLExpiry 是预签名下载链接的有效期。
const downloadURLExpiry = 15 * time.Minute

// URLSigner 抽象了对象存储的预签名能力，由 storage.Store 实现。
type URLSigner interface {
	PresignedDownloadURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// DocumentHandler 负责已存储原始文档的下载链接签发。
type DocumentHandler struct {
	signer URLSigner
}

// NewDocumentHandler 创建一个新的 DocumentHandler 实例。
func NewDocumentHandler(signer URLSigner) *DocumentHandler {
	return &DocumentHandler{signer: signer}
}

// GenerateDownloadURL 处理 GET /documents/download?file_name= 请求，
// 为 public/<file_name> 下的对象签发限时下载链接。
func (h *DocumentHandler) GenerateDownloadURL(c *gin.Context) {
	fileName := c.Query("file_name")
	if fileName == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "Missing file_name parameter."})
		return
	}

	objectName := fmt.Sprintf("public/%s", fileName)
	url, err := h.signer.PresignedDownloadURL(c.Request.Context(), objectName, downloadURLExpiry)
	if err != nil {
		log.Error("GenerateDownloadURL: 生成下载链接失败", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "An unexpected error occurred: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "file_name": fileName})
}
