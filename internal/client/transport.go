package client

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"foosball/pkg/protocol"

	"github.com/gorilla/websocket"
	kcp "github.com/xtaci/kcp-go/v5"
)

// Transport 已建立的双向消息通道，每次读写一条完整消息
type Transport interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
	RemoteAddr() string
}

// DialOptions 建立连接的参数
type DialOptions struct {
	Timeout time.Duration
	Header  http.Header // 仅 WebSocket 握手使用
}

// Dial 根据 URL scheme 建立连接：ws/wss 使用 WebSocket 文本帧，tcp/kcp 使用长度前缀帧
func Dial(ctx context.Context, rawURL string, opts DialOptions) (Transport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("解析地址失败: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultDialTimeout
	}

	switch u.Scheme {
	case "ws", "wss":
		return dialWebSocket(ctx, rawURL, opts)
	case "tcp":
		d := net.Dialer{Timeout: opts.Timeout}
		conn, err := d.DialContext(ctx, "tcp", u.Host)
		if err != nil {
			return nil, err
		}
		if tcpConn, ok := conn.(*net.TCPConn); ok {
			tcpConn.SetNoDelay(true)
		}
		return newStreamTransport(conn), nil
	case "kcp":
		conn, err := kcp.DialWithOptions(u.Host, nil, 0, 0)
		if err != nil {
			return nil, err
		}
		tuneKCP(conn)
		return newStreamTransport(conn), nil
	default:
		return nil, fmt.Errorf("不支持的协议: %s", u.Scheme)
	}
}

// tuneKCP 流模式加快速重传，move 命令不等待合包
func tuneKCP(conn *kcp.UDPSession) {
	conn.SetStreamMode(true)
	conn.SetNoDelay(kcpNoDelay, kcpInterval, kcpResend, kcpNoCongest)
	conn.SetWindowSize(kcpWindow, kcpWindow)
}

// DefaultCodecFor WebSocket 默认使用 JSON，流式传输默认使用 wire 编码
func DefaultCodecFor(rawURL, name string) (protocol.Codec, error) {
	if name != "" {
		return protocol.CodecByName(name)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "tcp" || u.Scheme == "kcp" {
		return protocol.Wire, nil
	}
	return protocol.JSON, nil
}

// ========== WebSocket ==========

type wsTransport struct {
	conn *websocket.Conn
}

func dialWebSocket(ctx context.Context, rawURL string, opts DialOptions) (Transport, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: opts.Timeout,
	}
	conn, resp, err := dialer.DialContext(ctx, rawURL, opts.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("握手失败 (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, err
	}
	conn.SetReadLimit(MaxPacketSize)
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) ReadMessage() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t *wsTransport) WriteMessage(data []byte) error {
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return t.conn.Close()
}

func (t *wsTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

// ========== 长度前缀流 ==========

type streamTransport struct {
	conn net.Conn
	wmu  sync.Mutex
}

func newStreamTransport(conn net.Conn) *streamTransport {
	return &streamTransport{conn: conn}
}

func (t *streamTransport) ReadMessage() ([]byte, error) {
	return protocol.ReadFrame(t.conn)
}

func (t *streamTransport) WriteMessage(data []byte) error {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	return protocol.WriteFrame(t.conn, data)
}

func (t *streamTransport) Close() error {
	return t.conn.Close()
}

func (t *streamTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}
