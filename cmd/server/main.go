package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"foosball/internal/config"
	"foosball/internal/logger"
	"foosball/internal/server"
	"foosball/pkg/protocol"
)

func main() {
	// 命令行参数
	configPath := flag.String("config", "", "配置文件路径（YAML）")
	address := flag.String("addr", "", "WebSocket 监听地址，覆盖配置")
	streamAddr := flag.String("stream", "", "tcp/kcp 监听地址，为空时不启用")
	proto := flag.String("proto", "", "流式监听协议: tcp 或 kcp")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Server.Listen = *address
	}
	if *streamAddr != "" {
		cfg.Server.StreamListen = *streamAddr
	}
	if *proto != "" {
		cfg.Server.StreamProto = *proto
	}

	logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log := logger.L()

	streamCodec := protocol.Wire
	if cfg.Link.Codec != "" {
		if streamCodec, err = protocol.CodecByName(cfg.Link.Codec); err != nil {
			log.Error("编码配置无效", "err", err)
			os.Exit(1)
		}
	}

	// 创建服务器
	srv := server.NewServer(server.Options{
		Addr:              cfg.Server.Listen,
		Path:              cfg.Server.Path,
		StreamAddr:        cfg.Server.StreamListen,
		StreamProto:       cfg.Server.StreamProto,
		StreamCodec:       streamCodec,
		BroadcastInterval: cfg.Server.BroadcastInterval,
		CommandRate:       cfg.Server.CommandRate,
		Secret:            []byte(cfg.Auth.Secret),
		Logger:            log,
	})
	if err := srv.Start(); err != nil {
		log.Error("服务器启动失败", "err", err)
		os.Exit(1)
	}

	log.Info("球桌模拟器正在运行，按 Ctrl+C 停止",
		"broadcast", cfg.Server.BroadcastInterval, "command_rate", cfg.Server.CommandRate)

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	srv.Shutdown()
}
