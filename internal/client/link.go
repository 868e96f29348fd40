package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"foosball/internal/logger"
	"foosball/pkg/protocol"

	"golang.org/x/time/rate"
)

// ErrSendQueueFull 发送队列已满，命令被丢弃
var ErrSendQueueFull = errors.New("send queue full")

// errNotOpen 链路未打开，命令被丢弃
var errNotOpen = errors.New("link not open")

// ConnectionState 链路状态，只由传输层事件驱动
type ConnectionState int32

const (
	StateConnecting ConnectionState = iota
	StateOpen
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// LinkOptions 链路配置
type LinkOptions struct {
	URL         string
	Codec       protocol.Codec // 为空时按 URL scheme 选择
	DialTimeout time.Duration
	SendQueue   int
	Header      http.Header
	Logger      *slog.Logger

	// dial 替换底层拨号（测试使用）
	dial func(ctx context.Context, rawURL string, opts DialOptions) (Transport, error)
}

// Link 与远端权威之间的唯一一条连接，不重连，不缓存关闭期间的命令
type Link struct {
	opts  LinkOptions
	codec protocol.Codec
	log   *slog.Logger

	mu        sync.Mutex // 保护 transport 与状态切换
	state     atomic.Int32
	transport Transport

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	startOnce sync.Once
	closeOnce sync.Once
	opened    chan struct{}
	done      chan struct{}

	// 发送队列
	sendChan chan []byte

	// 状态订阅，未订阅前收到的 pos 消息直接丢弃
	subMu sync.Mutex
	sub   chan protocol.StateUpdate

	dropLog      rate.Sometimes
	malformedLog rate.Sometimes
}

// NewLink 创建链路，初始状态为 Connecting
func NewLink(opts LinkOptions) *Link {
	if opts.SendQueue <= 0 {
		opts.SendQueue = DefaultSendQueueSize
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = DefaultDialTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.L()
	}
	if opts.dial == nil {
		opts.dial = Dial
	}
	codec := opts.Codec
	if codec == nil {
		c, err := DefaultCodecFor(opts.URL, "")
		if err != nil {
			c = protocol.JSON
		}
		codec = c
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Link{
		opts:         opts,
		codec:        codec,
		log:          opts.Logger.With("component", "link"),
		ctx:          ctx,
		cancel:       cancel,
		opened:       make(chan struct{}),
		done:         make(chan struct{}),
		sendChan:     make(chan []byte, opts.SendQueue),
		dropLog:      rate.Sometimes{First: warnLogFirst, Interval: warnLogInterval},
		malformedLog: rate.Sometimes{First: warnLogFirst, Interval: warnLogInterval},
	}
	l.state.Store(int32(StateConnecting))
	return l
}

// Start 在后台发起唯一一次连接尝试
func (l *Link) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		go l.connect(ctx)
	})
}

func (l *Link) connect(ctx context.Context) {
	l.log.Info("连接到服务器", "url", l.opts.URL, "codec", l.codec.Name())

	dialCtx, cancel := context.WithTimeout(ctx, l.opts.DialTimeout)
	defer cancel()

	transport, err := l.opts.dial(dialCtx, l.opts.URL, DialOptions{
		Timeout: l.opts.DialTimeout,
		Header:  l.opts.Header,
	})
	if err != nil {
		l.log.Warn("连接服务器失败，使用本地模拟", "err", err)
		l.shutdown()
		return
	}

	l.mu.Lock()
	if l.State() != StateConnecting {
		// 连接建立前已被关闭
		l.mu.Unlock()
		transport.Close()
		return
	}
	l.transport = transport
	l.state.Store(int32(StateOpen))
	l.wg.Add(2)
	close(l.opened)
	l.mu.Unlock()

	l.log.Info("已连接到服务器", "remote", transport.RemoteAddr())

	// 启动接收循环
	go l.receiveLoop()

	// 启动发送循环
	go l.sendLoop()

	// 外部上下文取消时关闭链路
	go func() {
		select {
		case <-ctx.Done():
			l.Close()
		case <-l.done:
		}
	}()
}

// State 当前连接状态
func (l *Link) State() ConnectionState {
	return ConnectionState(l.state.Load())
}

// Opened 连接成功时关闭的通道
func (l *Link) Opened() <-chan struct{} {
	return l.opened
}

// Done 链路关闭时关闭的通道
func (l *Link) Done() <-chan struct{} {
	return l.done
}

// Close 关闭链路并等待收发协程退出
func (l *Link) Close() {
	l.shutdown()
	l.wg.Wait()
}

// shutdown 切换到 Closed 并释放资源，可以被任意协程重复调用
func (l *Link) shutdown() {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.state.Store(int32(StateClosed))
		transport := l.transport
		l.mu.Unlock()

		l.cancel()
		if transport != nil {
			transport.Close()
		}
		close(l.done)

		l.subMu.Lock()
		if l.sub != nil {
			close(l.sub)
		}
		l.subMu.Unlock()

		l.log.Info("链路已关闭")
	})
}

// ========== 消息发送 ==========

// SendSelection 宣告当前控制的杆类型，链路未打开时静默丢弃
func (l *Link) SendSelection(index int) {
	l.send(protocol.NewSelection(index))
}

// SendMove 发送位移比例和转角增量，链路未打开时静默丢弃
func (l *Link) SendMove(posFraction, rotDelta float64) {
	l.send(protocol.NewMove(posFraction, rotDelta))
}

func (l *Link) send(msg *protocol.Message) {
	if err := l.enqueue(msg); err != nil && !errors.Is(err, errNotOpen) {
		l.dropLog.Do(func() {
			l.log.Warn("丢弃发送命令", "type", msg.Kind, "err", err)
		})
	}
}

// enqueue 编码并放入发送队列，不阻塞
func (l *Link) enqueue(msg *protocol.Message) error {
	if l.State() != StateOpen {
		return errNotOpen
	}
	data, err := l.codec.Marshal(msg)
	if err != nil {
		return err
	}
	select {
	case l.sendChan <- data:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// sendLoop 发送循环
func (l *Link) sendLoop() {
	defer l.wg.Done()

	for {
		select {
		case <-l.ctx.Done():
			return

		case data := <-l.sendChan:
			if err := l.transport.WriteMessage(data); err != nil {
				l.log.Warn("发送数据失败", "err", err)
				l.shutdown()
				return
			}
		}
	}
}

// ========== 消息接收 ==========

// Subscribe 注册状态订阅，多次调用返回同一个通道，链路关闭时通道被关闭
func (l *Link) Subscribe() <-chan protocol.StateUpdate {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	if l.sub == nil {
		l.sub = make(chan protocol.StateUpdate, StateBufferSize)
		if l.State() == StateClosed {
			close(l.sub)
		}
	}
	return l.sub
}

// receiveLoop 接收循环
func (l *Link) receiveLoop() {
	defer l.wg.Done()

	for {
		data, err := l.transport.ReadMessage()
		if err != nil {
			if l.ctx.Err() == nil {
				l.log.Warn("读取消息失败", "err", err)
			}
			l.shutdown()
			return
		}
		l.handleMessage(data)
	}
}

// handleMessage 解码并分发，只有 pos 消息会被投递
func (l *Link) handleMessage(data []byte) {
	msg, err := l.codec.Unmarshal(data)
	if err != nil {
		l.malformedLog.Do(func() {
			l.log.Warn("丢弃格式错误的消息", "err", err, "size", len(data))
		})
		return
	}

	switch msg.Kind {
	case protocol.KindState:
		l.deliver(*msg.State)
	default:
		l.log.Debug("忽略消息", "type", msg.Type)
	}
}

// deliver 投递快照，缓冲已满时丢弃最旧的一条
func (l *Link) deliver(update protocol.StateUpdate) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	if l.sub == nil || l.State() == StateClosed {
		return
	}
	for {
		select {
		case l.sub <- update:
			return
		default:
		}
		select {
		case <-l.sub:
		default:
		}
	}
}
