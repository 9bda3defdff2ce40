package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 是 taigitts 的顶层配置结构。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	DataDir  string         `yaml:"data_dir"`
	History  HistoryConfig  `yaml:"history"`
	TTS      TTSConfig      `yaml:"tts"`
	Playback PlaybackConfig `yaml:"playback"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig HTTP 服务配置。
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// HistoryConfig 历史纪录配置。
type HistoryConfig struct {
	// MaxEntries 保留的最大纪录数，超过后淘汰最旧的一条。
	MaxEntries int `yaml:"max_entries"`
}

// TTSConfig 语音合成配置。
type TTSConfig struct {
	Taigi   TaigiConfig   `yaml:"taigi"`
	Edge    EdgeConfig    `yaml:"edge"`
	Tencent TencentConfig `yaml:"tencent"`
}

// TaigiConfig 台语 TTS 远程 API 配置。
type TaigiConfig struct {
	APIURL         string   `yaml:"api_url"`
	Origin         string   `yaml:"origin"`
	Models         []string `yaml:"models"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// EdgeConfig Edge TTS 配置。
type EdgeConfig struct {
	Enabled bool   `yaml:"enabled"`
	Voice   string `yaml:"voice"`
}

// TencentConfig 腾讯云 TTS 配置。
type TencentConfig struct {
	SecretID  string `yaml:"secret_id"`
	SecretKey string `yaml:"secret_key"`
	VoiceType int64  `yaml:"voice_type"`
	Region    string `yaml:"region"`
}

// PlaybackConfig 本机扬声器播放配置（用于树莓派等一体机部署）。
type PlaybackConfig struct {
	Enabled  bool `yaml:"enabled"`
	Channels int  `yaml:"channels"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Load 读取 YAML 配置文件并返回 Config。
// 支持 ${VAR_NAME} 形式的环境变量展开。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	// 展开环境变量，如 ${TAIGITTS_TENCENT_SECRET_KEY}
	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// Default 返回全默认值的配置（无配置文件时使用）。
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.History.MaxEntries == 0 {
		cfg.History.MaxEntries = 50
	}
	if cfg.TTS.Taigi.APIURL == "" {
		cfg.TTS.Taigi.APIURL = "https://learn-language.tokyo/taigiTTS/taigi-text-to-speech"
	}
	if cfg.TTS.Taigi.Origin == "" {
		cfg.TTS.Taigi.Origin = "https://learn-language.tokyo"
	}
	if len(cfg.TTS.Taigi.Models) == 0 {
		cfg.TTS.Taigi.Models = []string{"model6"}
	}
	if cfg.TTS.Taigi.TimeoutSeconds == 0 {
		cfg.TTS.Taigi.TimeoutSeconds = 60
	}
	if cfg.TTS.Edge.Voice == "" {
		cfg.TTS.Edge.Voice = "zh-TW-HsiaoChenNeural"
	}
	if cfg.TTS.Tencent.Region == "" {
		cfg.TTS.Tencent.Region = "ap-guangzhou"
	}
	if cfg.Playback.Channels == 0 {
		cfg.Playback.Channels = 1
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.DataDir == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.DataDir = home + "/.taigitts"
		} else {
			cfg.DataDir = "./.taigitts-data"
		}
	} else if strings.HasPrefix(cfg.DataDir, "~/") {
		// Go 不会自动展开 ~，需要手动替换为用户主目录
		home, _ := os.UserHomeDir()
		if home != "" {
			cfg.DataDir = home + cfg.DataDir[1:]
		}
	}

	// 去除密钥两端可能的空白（环境变量展开后常见）
	cfg.TTS.Tencent.SecretID = strings.TrimSpace(cfg.TTS.Tencent.SecretID)
	cfg.TTS.Tencent.SecretKey = strings.TrimSpace(cfg.TTS.Tencent.SecretKey)
}
