package internal

const (
	// 配置文件目录名
	ConfigDirName = ".sort-folder"

	// 归档分类目录，解压阶段只处理该目录
	ArchivesDirName = "Archives"

	// 冲突处理策略默认值
	DefaultCollisionPolicy = "overwrite"

	// 结果通道缓冲区大小
	DefaultBufferSize = 1000

	// 每处理多少个文件输出一次进度
	DefaultProgressEvery = 100

	// 解压限制
	DefaultMaxArchiveFiles     = 10000
	DefaultMaxUncompressedSize = int64(4) << 30
)
