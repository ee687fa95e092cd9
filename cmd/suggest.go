package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"snapfm/config"
	"snapfm/core/gemini"
	"snapfm/core/spotify"
	"snapfm/core/suggest"
	"snapfm/logger"
	"snapfm/model"

	"github.com/spf13/cobra"
)

var (
	imagePath   string
	language    string
	genre       string
	contextHint string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "为一张照片推荐歌曲",
	Long:  `读取本地图片，分析画面氛围并推荐一首匹配的歌曲，同时尝试解析Spotify播放链接`,
	Run: func(cmd *cobra.Command, args []string) {
		if imagePath == "" {
			fmt.Println("请指定要分析的图片路径")
			os.Exit(1)
		}

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

		image, err := os.ReadFile(imagePath)
		if err != nil {
			log.Fatalf("读取图片失败: %v", err)
		}

		ctx := context.Background()
		generator, err := gemini.NewClient(ctx, cfg)
		if err != nil {
			log.Fatalf("初始化Gemini客户端失败: %v", err)
		}

		// Spotify 凭证缺失时仍然推荐，只是没有播放链接
		var searcher suggest.TrackSearcher
		if catalog, err := spotify.New(cfg); err != nil {
			log.Printf("Spotify不可用，跳过曲库解析: %v", err)
		} else {
			searcher = catalog
		}

		service := suggest.NewService(generator, searcher)

		fmt.Printf("正在分析: %s\n", imagePath)
		song, err := service.SuggestOne(ctx, image, mimeTypeForExt(filepath.Ext(imagePath)), model.Preferences{
			Language: language,
			Genre:    genre,
			Context:  contextHint,
		})
		if err != nil {
			log.Fatalf("推荐失败: %v", err)
		}

		fmt.Printf("\n歌曲: %s\n", song.SongTitle)
		fmt.Printf("艺术家: %s\n", song.Artist)
		if song.Summary != "" {
			fmt.Printf("推荐理由: %s\n", song.Summary)
		}
		if song.SpotifyURL != nil {
			fmt.Printf("Spotify: %s\n", *song.SpotifyURL)
		} else {
			fmt.Println("Spotify: 未找到匹配曲目")
		}
		if song.PreviewURL != nil {
			fmt.Printf("试听: %s\n", *song.PreviewURL)
		}
		fmt.Printf("网页搜索: %s\n", song.GoogleSearchURL)
	},
}

// mimeTypeForExt 根据扩展名推断图片MIME类型，未知扩展名按JPEG处理
func mimeTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	// 添加命令行参数
	suggestCmd.Flags().StringVarP(&imagePath, "image", "i", "", "要分析的图片路径")
	suggestCmd.Flags().StringVarP(&language, "language", "l", "English", "歌曲语言")
	suggestCmd.Flags().StringVarP(&genre, "genre", "g", "Popular", "偏好的曲风")
	suggestCmd.Flags().StringVarP(&contextHint, "context", "c", "", "附加场景说明")
}
