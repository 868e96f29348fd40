package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"foosball/pkg/protocol"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	sendQueueSize = 64              // 每个连接的发送队列
	writeTimeout  = 1 * time.Second // 写入超时
)

var (
	ErrSendQueueFull = errors.New("发送队列满")
	ErrConnClosed    = errors.New("连接已关闭")
)

// messageConn 按消息读写的底层连接
type messageConn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
	RemoteAddr() net.Addr
}

// streamConn tcp/kcp 上的长度前缀帧
type streamConn struct {
	net.Conn
}

func (c streamConn) ReadMessage() ([]byte, error) {
	return protocol.ReadFrame(c.Conn)
}

func (c streamConn) WriteMessage(data []byte) error {
	_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
	return protocol.WriteFrame(c.Conn, data)
}

// wsConn WebSocket 文本帧
type wsConn struct {
	conn *websocket.Conn
}

func (c wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c wsConn) WriteMessage(data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c wsConn) Close() error {
	return c.conn.Close()
}

func (c wsConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Connection 表示一个客户端连接
type Connection struct {
	id    int32
	conn  messageConn
	codec protocol.Codec
	table *Table
	log   *slog.Logger

	// 入站命令限速，超出的命令直接丢弃
	limiter *rate.Limiter
	dropLog rate.Sometimes

	// 发送队列
	sendChan chan []byte
	closeCh  chan struct{}
	closed   bool
	closeMu  sync.Mutex

	received atomic.Int64
	dropped  atomic.Int64
}

// NewConnection 创建新连接，commandRate <= 0 时不限速
func NewConnection(id int32, conn messageConn, codec protocol.Codec, table *Table, commandRate float64, log *slog.Logger) *Connection {
	limit := rate.Inf
	burst := 0
	if commandRate > 0 {
		limit = rate.Limit(commandRate)
		burst = int(commandRate/10) + 1
	}
	return &Connection{
		id:       id,
		conn:     conn,
		codec:    codec,
		table:    table,
		log:      log.With("session", id, "remote", conn.RemoteAddr().String()),
		limiter:  rate.NewLimiter(limit, burst),
		dropLog:  rate.Sometimes{First: 1, Interval: 5 * time.Second},
		sendChan: make(chan []byte, sendQueueSize),
		closeCh:  make(chan struct{}),
	}
}

// Handle 加入球桌并处理连接，直到连接关闭或上下文取消
func (c *Connection) Handle(ctx context.Context) {
	c.log.Info("连接处理开始", "codec", c.codec.Name())
	c.table.Join(c)
	defer c.table.Leave(c.id)

	var wg sync.WaitGroup

	// 启动发送循环
	wg.Add(1)
	go c.sendLoop(ctx, &wg)

	// 启动接收循环
	wg.Add(1)
	go c.receiveLoop(&wg)

	// 等待上下文取消或连接关闭
	select {
	case <-ctx.Done():
	case <-c.closeCh:
	}

	c.Close()
	wg.Wait()
}

// Close 关闭连接
func (c *Connection) Close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.closeCh)

	// 关闭网络连接
	c.conn.Close()

	c.log.Info("连接已关闭", "received", c.received.Load(), "dropped", c.dropped.Load())
}

func (c *Connection) ID() int32 {
	return c.id
}

func (c *Connection) Codec() protocol.Codec {
	return c.codec
}

// Send 发送数据（异步）
func (c *Connection) Send(data []byte) error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return ErrConnClosed
	}

	select {
	case c.sendChan <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// sendLoop 发送循环
func (c *Connection) sendLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closeCh:
			return
		case data := <-c.sendChan:
			if err := c.conn.WriteMessage(data); err != nil {
				c.log.Warn("发送数据失败", "err", err)
				c.Close()
				return
			}
		}
	}
}

// receiveLoop 接收循环
func (c *Connection) receiveLoop(wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		data, err := c.conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, io.EOF) && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("读取失败", "err", err)
			}
			c.Close()
			return
		}

		c.received.Add(1)
		if !c.limiter.Allow() {
			c.dropped.Add(1)
			c.dropLog.Do(func() {
				c.log.Warn("命令过于频繁，已丢弃")
			})
			continue
		}

		if err := c.handleMessage(data); err != nil {
			c.log.Warn("处理消息失败", "err", err)
		}
	}
}

// handleMessage 处理接收到的消息
func (c *Connection) handleMessage(data []byte) error {
	event, err := DecodePacket(c.codec, data)
	if err != nil {
		return fmt.Errorf("反序列化失败: %w", err)
	}

	switch event.Kind {
	case EventSelection, EventMove:
		event.SessionID = c.id
		c.table.Enqueue(event)
	default:
		// 未知类型直接忽略
	}
	return nil
}

// String 返回连接的字符串表示
func (c *Connection) String() string {
	return fmt.Sprintf("Connection{%d, %s}", c.id, c.conn.RemoteAddr())
}
