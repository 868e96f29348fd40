package server

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"foosball/pkg/core"
	"foosball/pkg/protocol"
)

// DefaultBroadcastInterval 状态广播间隔
const DefaultBroadcastInterval = 100 * time.Millisecond

// TableState 球桌状态：一个当前选择，红方四根杆的行程比例和转角（弧度）
type TableState struct {
	Selection int
	Pos       [core.RodsPerSide]float64
	Rot       [core.RodsPerSide]float64
}

// NoSelection 尚未收到 selection，期间的 move 全部忽略
const NoSelection = -1

// NewTableState 所有杆在行程中点，未选中任何杆
func NewTableState() TableState {
	s := TableState{Selection: NoSelection}
	for i := range s.Pos {
		s.Pos[i] = 0.5
	}
	return s
}

// Apply 应用一条命令；选择越界时忽略 move
func (s *TableState) Apply(ev *TableEvent) {
	switch ev.Kind {
	case EventSelection:
		s.Selection = ev.Selection
	case EventMove:
		if ev.Move == nil || s.Selection < 0 || s.Selection >= core.RodsPerSide {
			return
		}
		s.Pos[s.Selection] = clamp01(s.Pos[s.Selection] + ev.Move.Pos)
		s.Rot[s.Selection] += ev.Move.Rot
	}
}

// Snapshot 生成广播快照：红方转角换算成度，蓝方固定在中点，球在中心
func (s *TableState) Snapshot() protocol.StateUpdate {
	update := protocol.RestState()
	for i := 0; i < core.RodsPerSide; i++ {
		update.SetRod(core.SideRed, i, s.Pos[i], core.RadiansToDegrees(s.Rot[i]))
	}
	return update
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Table 单张球桌的事件循环，所有状态只在 Run 协程中修改
type Table struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger

	interval time.Duration
	state    TableState

	sessions map[int32]Session

	joinCh  chan Session
	leaveCh chan int32
	eventCh chan *TableEvent

	snapMu   sync.RWMutex
	snapshot TableState
}

func NewTable(parent context.Context, interval time.Duration, log *slog.Logger) *Table {
	ctx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = DefaultBroadcastInterval
	}
	state := NewTableState()

	return &Table{
		ctx:      ctx,
		cancel:   cancel,
		log:      log.With("component", "table"),
		interval: interval,
		state:    state,
		snapshot: state,
		sessions: make(map[int32]Session),
		joinCh:   make(chan Session),
		leaveCh:  make(chan int32, 64),
		eventCh:  make(chan *TableEvent, 256),
	}
}

func (t *Table) Run(wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.log.Info("球桌循环启动", "interval", t.interval)

	for {
		select {
		case <-t.ctx.Done():
			t.closeAllSessions()
			t.log.Info("球桌循环停止")
			return

		case s := <-t.joinCh:
			t.sessions[s.ID()] = s
			t.log.Info("客户端加入", "session", s.ID(), "sessions", len(t.sessions))

		case id := <-t.leaveCh:
			if _, ok := t.sessions[id]; ok {
				delete(t.sessions, id)
				t.log.Info("客户端离开", "session", id, "sessions", len(t.sessions))
			}

		case ev := <-t.eventCh:
			t.handleEvent(ev)

		case <-ticker.C:
			t.broadcast()
		}
	}
}

func (t *Table) Shutdown() {
	t.cancel()
}

// Join 注册会话，球桌已关闭时直接关闭会话
func (t *Table) Join(s Session) {
	select {
	case <-t.ctx.Done():
		s.Close()
	case t.joinCh <- s:
	}
}

func (t *Table) Leave(id int32) {
	select {
	case <-t.ctx.Done():
	case t.leaveCh <- id:
	}
}

// Enqueue 投递命令，队列满时丢弃
func (t *Table) Enqueue(ev *TableEvent) {
	select {
	case <-t.ctx.Done():
	case t.eventCh <- ev:
	default:
		t.log.Warn("命令队列满，丢弃命令", "session", ev.SessionID, "kind", ev.Kind)
	}
}

// State 最近一次处理后的状态（只读副本）
func (t *Table) State() TableState {
	t.snapMu.RLock()
	defer t.snapMu.RUnlock()
	return t.snapshot
}

func (t *Table) handleEvent(ev *TableEvent) {
	if ev.Kind == EventSelection {
		t.log.Debug("切换控制杆", "session", ev.SessionID, "selection", ev.Selection)
	}
	t.state.Apply(ev)

	t.snapMu.Lock()
	t.snapshot = t.state
	t.snapMu.Unlock()
}

// broadcast 按各会话的编码发送状态快照
func (t *Table) broadcast() {
	if len(t.sessions) == 0 {
		return
	}
	update := t.state.Snapshot()

	encoded := make(map[string][]byte, 2)
	for id, s := range t.sessions {
		codec := s.Codec()
		data, ok := encoded[codec.Name()]
		if !ok {
			var err error
			data, err = EncodeState(codec, update)
			if err != nil {
				t.log.Error("序列化状态失败", "err", err)
				return
			}
			encoded[codec.Name()] = data
		}
		if err := s.Send(data); err != nil {
			t.log.Debug("发送状态失败", "session", id, "err", err)
		}
	}
}

func (t *Table) closeAllSessions() {
	for id, s := range t.sessions {
		s.Close()
		delete(t.sessions, id)
	}
}
