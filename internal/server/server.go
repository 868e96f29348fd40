package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"foosball/internal/auth"
	"foosball/internal/logger"
	"foosball/pkg/protocol"

	"github.com/gorilla/websocket"
)

// Options 球桌模拟器配置
type Options struct {
	Addr              string // WebSocket 监听地址
	Path              string // WebSocket 路径
	StreamAddr        string // tcp/kcp 监听地址，为空时不启用
	StreamProto       string
	StreamCodec       protocol.Codec // 流式连接的编码，默认 wire
	BroadcastInterval time.Duration
	CommandRate       float64 // 每个连接每秒允许的命令数
	Secret            []byte  // 非空时校验握手中的 JWT
	Logger            *slog.Logger
}

// Server 远端权威的开发替身：接收 selection/move，定时广播 pos
type Server struct {
	opts Options
	log  *slog.Logger

	table    *Table
	upgrader websocket.Upgrader

	httpServer *http.Server
	httpLn     net.Listener
	listener   ServerListener

	nextID atomic.Int32

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewServer(opts Options) *Server {
	if opts.Path == "" {
		opts.Path = "/position"
	}
	if opts.Logger == nil {
		opts.Logger = logger.L()
	}
	if opts.StreamCodec == nil {
		opts.StreamCodec = protocol.Wire
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		opts:   opts,
		log:    opts.Logger.With("component", "server"),
		ctx:    ctx,
		cancel: cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  protocol.MaxFrameSize,
			WriteBufferSize: protocol.MaxFrameSize,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.table = NewTable(ctx, opts.BroadcastInterval, opts.Logger)
	return s
}

// Start 开始监听并启动球桌循环，不阻塞
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("监听失败: %w", err)
	}
	s.httpLn = ln

	if s.opts.StreamAddr != "" {
		listener, err := newListener(s.opts.StreamProto, s.opts.StreamAddr)
		if err != nil {
			ln.Close()
			return fmt.Errorf("监听失败: %w", err)
		}
		s.listener = listener
	}

	// 启动球桌循环
	s.wg.Add(1)
	go s.table.Run(&s.wg)

	mux := http.NewServeMux()
	mux.HandleFunc(s.opts.Path, s.handleWebSocket)
	s.httpServer = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP 服务异常退出", "err", err)
		}
	}()
	s.log.Info("WebSocket 监听中", "addr", ln.Addr().String(), "path", s.opts.Path, "auth", len(s.opts.Secret) > 0)

	if s.listener != nil {
		s.wg.Add(1)
		go s.acceptLoop()
		s.log.Info("流式监听中", "proto", s.opts.StreamProto, "addr", s.listener.Addr().String())
	}
	return nil
}

// Addr WebSocket 实际监听地址
func (s *Server) Addr() net.Addr {
	if s.httpLn == nil {
		return nil
	}
	return s.httpLn.Addr()
}

// StreamAddr 流式监听实际地址
func (s *Server) StreamAddr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Table 球桌
func (s *Server) Table() *Table {
	return s.table
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown() {
	s.log.Info("正在关闭服务器...")

	// 取消上下文
	s.cancel()
	s.table.Shutdown()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = s.httpServer.Shutdown(ctx)
		cancel()
	}

	// 关闭监听器
	if s.listener != nil {
		s.listener.Close()
	}

	// 等待所有 goroutine 结束
	s.wg.Wait()

	s.log.Info("服务器已关闭")
}

// handleWebSocket 校验 Token 后升级连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if len(s.opts.Secret) > 0 {
		token, err := auth.TokenFromRequest(r)
		if err == nil {
			_, err = auth.VerifySessionToken(s.opts.Secret, token)
		}
		if err != nil {
			s.log.Warn("握手鉴权失败", "remote", r.RemoteAddr, "err", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("升级 WebSocket 失败", "err", err)
		return
	}
	conn.SetReadLimit(protocol.MaxFrameSize)

	s.serve(wsConn{conn: conn}, protocol.JSON)
}

// acceptLoop 接受 tcp/kcp 连接
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				s.log.Info("停止接受新连接")
				return
			default:
				s.log.Warn("接受连接失败", "err", err)
				continue
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serve(streamConn{Conn: conn}, s.opts.StreamCodec)
		}()
	}
}

func (s *Server) serve(conn messageConn, codec protocol.Codec) {
	id := s.nextID.Add(1)
	c := NewConnection(id, conn, codec, s.table, s.opts.CommandRate, s.log)
	c.Handle(s.ctx)
}
