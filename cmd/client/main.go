package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"foosball/internal/auth"
	"foosball/internal/client"
	"foosball/internal/config"
	"foosball/internal/desktop"
	"foosball/internal/logger"
	"foosball/internal/scene"
	"foosball/pkg/core"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	// 命令行参数
	configPath := flag.String("config", "", "配置文件路径（YAML）")
	serverURL := flag.String("url", "", "服务器地址，覆盖配置，例如 ws://127.0.0.1:9001/position")
	side := flag.String("side", "", "控制的一方: red 或 blue")
	flag.Parse()

	if err := run(*configPath, *serverURL, *side); err != nil {
		fmt.Fprintf(os.Stderr, "启动失败: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, serverURL, side string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.Link.URL = serverURL
	}
	if side != "" {
		cfg.Link.Side = side
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	out, closeLog, err := openLogOutput(cfg.Logging.File)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: out})
	log := logger.L()

	keys, err := desktop.NewKeyMap(cfg.Input.Keys)
	if err != nil {
		return err
	}
	codec, err := client.DefaultCodecFor(cfg.Link.URL, cfg.Link.Codec)
	if err != nil {
		return err
	}

	// 配置了密钥时在握手中携带 Token
	var token string
	if cfg.Auth.Secret != "" {
		token, err = auth.GenerateSessionToken([]byte(cfg.Auth.Secret), cfg.Auth.ClientID, cfg.Link.Side)
		if err != nil {
			return fmt.Errorf("生成 Token 失败: %w", err)
		}
	}

	table := cfg.CoreTable()
	link := client.NewLink(client.LinkOptions{
		URL:         cfg.Link.URL,
		Codec:       codec,
		DialTimeout: cfg.Link.DialTimeout,
		SendQueue:   cfg.Link.SendQueue,
		Header:      auth.BearerHeader(token),
		Logger:      log,
	})
	fusion := client.NewInputFusion(client.InputOptions{
		LinearSpeed:     cfg.Input.LinearSpeed,
		RotationSpeed:   cfg.Input.RotationSpeed,
		PrecisionFactor: cfg.Input.PrecisionFactor,
		ShotImpulse:     cfg.Input.ShotImpulse,
		AxisDeadzone:    cfg.Input.AxisDeadzone,
	})
	stateSync := client.NewStateSync(link, client.SyncOptions{
		Side:        cfg.Side(),
		Table:       table,
		GracePeriod: cfg.Link.GracePeriod,
		Logger:      log,
	})
	game := desktop.NewGame(stateSync, fusion, keys, cfg.Side(), table)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scene.NewLoader(table, 0).Load(game.SetModel, func(err error) {
		log.Error("加载球桌模型失败", "err", err)
		game.SetLoadError(err)
	})
	link.Start(ctx)
	stateSync.Start(ctx)
	defer link.Close()

	// 设置窗口选项
	ebiten.SetWindowSize(desktop.ScreenWidth, desktop.ScreenHeight)
	ebiten.SetWindowTitle(fmt.Sprintf("Foosball - 桌上足球 [%s] %s", cfg.Side(), cfg.Link.URL))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	ebiten.SetTPS(core.FPS)

	// 运行主循环
	return ebiten.RunGame(game)
}

func openLogOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	return f, func() { f.Close() }, nil
}
