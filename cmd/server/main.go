// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finreport-rag-go/internal/config"
	"finreport-rag-go/internal/handler"
	"finreport-rag-go/internal/middleware"
	"finreport-rag-go/internal/pipeline"
	"finreport-rag-go/internal/service"
	"finreport-rag-go/pkg/embedding"
	"finreport-rag-go/pkg/es"
	"finreport-rag-go/pkg/llm"
	"finreport-rag-go/pkg/log"
	"finreport-rag-go/pkg/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化对象存储与向量存储客户端（进程生命周期内共享，只读复用）
	store, err := storage.New(cfg.MinIO)
	if err != nil {
		log.Fatal("MinIO 初始化失败", err)
	}
	esClient, err := es.New(cfg.Elasticsearch)
	if err != nil {
		log.Fatal("Elasticsearch 初始化失败", err)
	}

	// 4. 初始化模型客户端
	embeddingClient, err := embedding.NewClient(cfg.Embedding)
	if err != nil {
		log.Fatal("Embedding 客户端初始化失败", err)
	}
	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		log.Fatal("LLM 客户端初始化失败", err)
	}

	// 5. 初始化分块管道与 Service（依赖注入）
	chunker := pipeline.NewChunker(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	ingestService := service.NewIngestService(store, chunker, embeddingClient, esClient, cfg.Embedding.Model)
	chatService := service.NewChatService(embeddingClient, esClient, llmClient, cfg.RAG.TopK)

	// 6. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	// 完全开放的 CORS：所有来源、方法、请求头
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
	}))

	// 7. 注册路由
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/upload/", handler.NewUploadHandler(ingestService).Upload)
	r.POST("/chat/", handler.NewChatHandler(chatService).Chat)
	r.GET("/documents/download", handler.NewDocumentHandler(store).GenerateDownloadURL)

	// 8. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
