package cmd

import (
	"snapfm/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动SnapFM服务器",
	Long:  `启动SnapFM照片选歌服务的HTTP服务器，提供歌曲推荐API`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
