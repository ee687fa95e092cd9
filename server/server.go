package server

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"snapfm/config"
	"snapfm/core/gemini"
	"snapfm/core/spotify"
	"snapfm/core/suggest"
	"snapfm/logger"
	"snapfm/storage"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	})
	defer logger.Sync()

	// 设置服务器超时。WriteTimeout 要容纳三层生成链路的最坏情况
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 初始化 Gemini 客户端，没有密钥服务无法工作
	generator, err := gemini.NewClient(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}

	// Spotify 凭证缺失时降级运行，所有歌曲都会带 spotify_error 标记
	var searcher suggest.TrackSearcher
	if spotifyClient, err := spotify.New(cfg); err != nil {
		logger.Warn("Failed to initialize Spotify client, suggestions will carry no catalog metadata",
			logger.ErrorField(err))
	} else {
		searcher = spotifyClient
	}

	// 初始化上传存储
	store, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize upload store: %v", err)
	}

	service := suggest.NewService(generator, searcher)
	suggestHandler := NewSuggestHandler(service, store)

	// 使用 gorilla/mux 创建路由器
	router := mux.NewRouter()

	// 添加 CORS 中间件
	router.Use(corsMiddleware)

	// API Endpoints
	suggestHandler.RegisterRoutes(router)

	// 上传文件访问路由，按存储后端选择本地目录或 MinIO
	if minioStore, ok := store.(*storage.MinioStore); ok {
		router.PathPrefix("/uploads/").HandlerFunc(minioFileHandler(minioStore))
	} else {
		uploadsFileServer := http.FileServer(http.Dir(cfg.UploadDir))
		router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", uploadsFileServer))
	}

	server.Handler = router

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 在goroutine中启动服务器
	go func() {
		logger.Info("server starting",
			logger.String("port", cfg.ServerPort),
			logger.String("model", cfg.GeminiModel),
			logger.Bool("grounding", cfg.GeminiGrounding),
			logger.Bool("spotify", searcher != nil),
			logger.String("uploadStore", cfg.UploadStore))
		log.Printf("Suggest songs via POST to http://localhost:%s/suggest-song", cfg.ServerPort)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待中断信号
	<-stop
	logger.Info("shutting down server")

	// 创建一个5秒超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("server stopped")
}

// corsMiddleware 允许所有来源访问，预检请求直接返回
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// minioFileHandler 从 MinIO 读取上传文件并返回
func minioFileHandler(store *storage.MinioStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/uploads/")

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		object, err := store.Open(ctx, name)
		if err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		defer object.Close()

		contentType := "application/octet-stream"
		switch strings.ToLower(filepath.Ext(name)) {
		case ".png":
			contentType = "image/png"
		case ".jpg", ".jpeg":
			contentType = "image/jpeg"
		case ".gif":
			contentType = "image/gif"
		case ".webp":
			contentType = "image/webp"
		}
		w.Header().Set("Content-Type", contentType)

		if _, err := io.Copy(w, object); err != nil {
			logger.Warn("error serving file from MinIO", logger.String("name", name), logger.ErrorField(err))
		}
	}
}
