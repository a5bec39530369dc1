package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	logFile    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sort-folder",
	Short: "按扩展名整理目录中的文件",
	Long: `Sort Folder 是一个命令行工具，用于把一个杂乱的目录整理成按类型分类的结构。

主要功能:
- 递归遍历目录，按扩展名把文件归入 Audios、Images、Videos、Docs、Archives、Other
- 将文件名音译为拉丁字母，并把其他字符替换为下划线
- 并发移动文件
- 删除整理后留下的空目录
- 解压 Archives 目录中的 zip 压缩包`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "配置文件路径（默认在 $HOME/.sort-folder/config.yaml 等位置查找）")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "日志文件路径")
}
