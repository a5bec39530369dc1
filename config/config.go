package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/moyu-x/sort-folder/internal"
)

type Config struct {
	Performance struct {
		Workers int `mapstructure:"workers"`
	} `mapstructure:"performance"`
	Organize struct {
		Collision string `mapstructure:"collision"`
		KeepRoot  bool   `mapstructure:"keep_root"`
	} `mapstructure:"organize"`
	Archives struct {
		Extract             bool  `mapstructure:"extract"`
		MaxFiles            int   `mapstructure:"max_files"`
		MaxUncompressedSize int64 `mapstructure:"max_uncompressed_size"`
	} `mapstructure:"archives"`
	Logging struct {
		Level string `mapstructure:"level"`
		File  string `mapstructure:"file"`
	} `mapstructure:"logging"`
}

// Load 读取配置文件。path 为空时依次在 $HOME/.sort-folder、当前目录、
// /etc/sort-folder 中查找 config.yaml，找不到时使用默认值。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, internal.ConfigDirName))
		}
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/sort-folder")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("performance.workers", 0)
	v.SetDefault("organize.collision", internal.DefaultCollisionPolicy)
	v.SetDefault("organize.keep_root", true)
	v.SetDefault("archives.extract", true)
	v.SetDefault("archives.max_files", internal.DefaultMaxArchiveFiles)
	v.SetDefault("archives.max_uncompressed_size", internal.DefaultMaxUncompressedSize)
	v.SetDefault("logging.level", "info")
}
