package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"snapfm/core/suggest"
	"snapfm/logger"
	"snapfm/model"
	"snapfm/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxUploadSize = 10 << 20 // 10MB

// SuggestHandler 处理歌曲推荐相关的请求
type SuggestHandler struct {
	service *suggest.Service
	store   storage.UploadStore
}

// NewSuggestHandler 创建新的推荐处理器
func NewSuggestHandler(service *suggest.Service, store storage.UploadStore) *SuggestHandler {
	return &SuggestHandler{service: service, store: store}
}

// RegisterRoutes 注册路由
func (h *SuggestHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/suggest-song", h.SuggestSong).Methods(http.MethodPost)
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/", h.Root).Methods(http.MethodGet)
}

// SuggestSong 接收一张图片，返回三首匹配歌曲
func (h *SuggestHandler) SuggestSong(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		logger.Error("解析表单失败", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "Failed to parse form.", "invalid_request")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		logger.Error("获取图片文件失败", logger.ErrorField(err))
		if errors.Is(err, http.ErrMissingFile) {
			writeError(w, http.StatusBadRequest, "Missing image file. Please select a file to upload.", "invalid_request")
		} else {
			writeError(w, http.StatusBadRequest, "Failed to process uploaded file.", "invalid_request")
		}
		return
	}
	defer file.Close()

	// 在调用任何外部服务之前校验文件类型
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		logger.Warn("拒绝非图片文件",
			logger.String("filename", header.Filename),
			logger.String("contentType", contentType))
		writeError(w, http.StatusBadRequest, "Invalid file type. Please upload an image file.", "invalid_request")
		return
	}

	prefs := model.Preferences{
		Language: formValueDefault(r, "language", "English"),
		Genre:    formValueDefault(r, "genre", "Popular"),
		Context:  r.FormValue("context"),
	}

	logger.Info("processing image",
		logger.String("filename", header.Filename),
		logger.String("language", prefs.Language),
		logger.String("genre", prefs.Genre),
		logger.Bool("hasContext", prefs.Context != ""))

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error("读取上传文件失败", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file.", "invalid_request")
		return
	}

	// 临时文件仅在请求期间存在，处理结束后无条件删除
	tempName := "temp_" + uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))
	if err := h.store.Save(r.Context(), tempName, data, contentType); err != nil {
		logger.Error("保存临时文件失败", logger.String("name", tempName), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to store uploaded file.", "internal")
		return
	}
	defer func() {
		// 清理不依赖请求上下文，失败只记录
		if err := h.store.Remove(context.Background(), tempName); err != nil {
			logger.Warn("清理临时文件失败", logger.String("name", tempName), logger.ErrorField(err))
		}
	}()

	resp, err := h.service.Suggest(r.Context(), data, contentType, prefs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Root 根端点
func (h *SuggestHandler) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Song Suggestor API is running! 🎵"})
}

// Health 健康检查端点
func (h *SuggestHandler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"message": "API is running smoothly ✨",
	})
}

func formValueDefault(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}

// writeServiceError 把管道错误映射为对应的状态码和错误类别
func writeServiceError(w http.ResponseWriter, err error) {
	var genErr *model.GenerationError
	switch {
	case errors.As(err, &genErr):
		logger.Error("all generation tiers failed", logger.ErrorField(err))
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "generation_failed")
	case errors.Is(err, model.ErrNoValidSuggestions):
		logger.Error("no valid songs in batch", logger.ErrorField(err))
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "no_valid_songs")
	default:
		logger.Error("unexpected error processing request", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("An error occurred while processing your request: %v", err), "internal")
	}
}

func writeError(w http.ResponseWriter, status int, detail, category string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"detail":   detail,
		"category": category,
	})
}
