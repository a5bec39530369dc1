package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moyu-x/sort-folder/app"
	"github.com/moyu-x/sort-folder/config"
	"github.com/moyu-x/sort-folder/pkg/archive"
)

var organizeCmd = &cobra.Command{
	Use:   "organize <directory>",
	Short: "整理目录",
	Long: `递归遍历目录中的所有文件，按扩展名移动到 <directory>/<分类>/ 下，
文件名音译并规范化。随后删除空目录，并解压 Archives 中的 zip 压缩包。
单个文件失败不会中断整理，失败项会在结束时列出。`,
	Args: cobra.ExactArgs(1),
	RunE: runOrganize,
}

func runOrganize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	workers := cfg.Performance.Workers
	if flags.Changed("workers") {
		workers, _ = flags.GetInt("workers")
	}
	collision := cfg.Organize.Collision
	if flags.Changed("collision") {
		collision, _ = flags.GetString("collision")
	}
	pruneRoot, _ := flags.GetBool("prune-root")
	noExtract, _ := flags.GetBool("no-extract")
	dryRun, _ := flags.GetBool("dry-run")
	verbose, _ := flags.GetBool("verbose")

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	file := cfg.Logging.File
	if logFile != "" {
		file = logFile
	}

	opts := &app.OrganizeOptions{
		Root:      args[0],
		Workers:   workers,
		Collision: collision,
		KeepRoot:  cfg.Organize.KeepRoot && !pruneRoot,
		Extract:   cfg.Archives.Extract && !noExtract,
		DryRun:    dryRun,
		Archive: &archive.Options{
			MaxFiles:            cfg.Archives.MaxFiles,
			MaxUncompressedSize: cfg.Archives.MaxUncompressedSize,
		},
		Verbose:  verbose,
		LogLevel: level,
		LogFile:  file,
	}

	report, err := app.RunOrganize(opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderReport(report))

	if failures := len(report.Failures()); failures > 0 {
		return fmt.Errorf("%d 项处理失败", failures)
	}
	return nil
}

func init() {
	organizeCmd.Flags().Int("workers", 0, "并发移动的工作线程数（默认: CPU 核数）")
	organizeCmd.Flags().String("collision", "overwrite", "目标文件已存在时的处理方式: overwrite, suffix")
	organizeCmd.Flags().Bool("prune-root", false, "根目录清理后为空时一并删除")
	organizeCmd.Flags().Bool("no-extract", false, "不解压 zip 压缩包")
	organizeCmd.Flags().Bool("dry-run", false, "只显示将要执行的移动，不修改任何文件")
	organizeCmd.Flags().Bool("verbose", false, "显示详细日志")

	rootCmd.AddCommand(organizeCmd)
}
