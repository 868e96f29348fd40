package client

import (
	"time"

	"foosball/pkg/protocol"
)

// ===== 网络链路配置（客户端专用）=====
const (
	// 单帧最大字节数，WebSocket 读限制与流式帧共用
	MaxPacketSize = protocol.MaxFrameSize

	// 发送队列大小：写协程来不及发送时直接丢弃新命令
	DefaultSendQueueSize = 64

	// 状态订阅缓冲：消费者落后时丢弃最旧的快照
	StateBufferSize = 8

	// 建立连接的超时时间
	DefaultDialTimeout = 5 * time.Second

	// 连接建立后到宣告选择、注册状态订阅之间的宽限期
	DefaultGracePeriod = 300 * time.Millisecond

	// KCP 快速模式参数，与模拟器监听端一致
	kcpNoDelay   = 1
	kcpInterval  = 10 // ms
	kcpResend    = 2
	kcpNoCongest = 1
	kcpWindow    = 128

	// 重复告警日志的节流：前 N 条必打，之后每个间隔最多一条
	warnLogFirst    = 3
	warnLogInterval = 5 * time.Second
)
