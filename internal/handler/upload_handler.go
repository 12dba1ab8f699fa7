// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"io"
	"net/http"
	"os"
	"strings"

	"finreport-rag-go/internal/model"
	"finreport-rag-go/internal/service"
	"finreport-rag-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// UploadHandler 负责处理 PDF 摄取请求。
type UploadHandler struct {
	ingestService service.IngestService
}

// NewUploadHandler 创建一个新的 UploadHandler 实例。
func NewUploadHandler(ingestService service.IngestService) *UploadHandler {
	return &UploadHandler{ingestService: ingestService}
}

// Upload 处理 POST /upload/ 请求：校验扩展名，将上传字节落到临时文件
// （所有退出路径均清理），再交给摄取管道。管道中任一阶段失败都压平为
// 统一的 500 响应，错误原文回显在 detail 字段。
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "No file provided."})
		return
	}

	// 扩展名校验失败时直接拒绝，不产生任何副作用
	if !strings.HasSuffix(fileHeader.Filename, ".pdf") {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Detail: "Invalid file type. Only PDFs are allowed."})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Error("Upload: 打开上传文件失败", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "An unexpected error occurred: " + err.Error()})
		return
	}
	defer src.Close()

	tmpFile, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		log.Error("Upload: 创建临时文件失败", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "An unexpected error occurred: " + err.Error()})
		return
	}
	defer os.Remove(tmpFile.Name())

	_, err = io.Copy(tmpFile, src)
	closeErr := tmpFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		log.Error("Upload: 写入临时文件失败", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "An unexpected error occurred: " + err.Error()})
		return
	}

	if _, err := h.ingestService.IngestPDF(c.Request.Context(), tmpFile.Name(), fileHeader.Filename); err != nil {
		log.Error("Upload: 文件摄取管道失败", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Detail: "An unexpected error occurred: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.UploadResponse{
		Message:  "File processed and embeddings stored successfully.",
		FileName: fileHeader.Filename,
	})
}
