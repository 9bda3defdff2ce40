package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taigitts/internal/audio"
	"taigitts/internal/config"
	"taigitts/internal/history"
	"taigitts/internal/logger"
	"taigitts/internal/server"
	"taigitts/internal/tts"
)

func main() {
	configPath := flag.String("config", "configs/taigitts.yaml", "配置文件路径")
	flag.Parse()

	var cfg *config.Config
	if _, err := os.Stat(*configPath); err == nil {
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
			os.Exit(1)
		}
	} else {
		// 没有配置文件时用全默认值运行
		cfg = config.Default()
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infof("[main] taigitts 启动中 (listen=%s, data_dir=%s)", cfg.Server.Listen, cfg.DataDir)

	store, err := history.NewStore(cfg.DataDir, cfg.History.MaxEntries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建历史存储失败: %v\n", err)
		os.Exit(1)
	}

	audioDir, err := audio.NewDir(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建音频目录失败: %v\n", err)
		os.Exit(1)
	}

	registry, err := tts.NewRegistry(cfg.TTS)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化 TTS 引擎失败: %v\n", err)
		os.Exit(1)
	}

	var player *audio.Player
	if cfg.Playback.Enabled {
		player, err = audio.NewPlayer(cfg.Playback.Channels)
		if err != nil {
			fmt.Fprintf(os.Stderr, "初始化播放器失败: %v\n", err)
			os.Exit(1)
		}
		defer player.Close()
	}

	handler := server.NewHandler(store, registry, audioDir, player)
	srv := server.New(handler, audioDir.Path(), cfg.Playback.Enabled, cfg.History.MaxEntries)

	// 监听系统信号，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infof("[main] 收到信号 %v，正在关闭...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warnf("[main] 关闭服务失败: %v", err)
		}
	}()

	if err := srv.Start(cfg.Server.Listen); err != nil {
		fmt.Fprintf(os.Stderr, "服务运行出错: %v\n", err)
		os.Exit(1)
	}

	logger.Info("[main] taigitts 已停止")
}
