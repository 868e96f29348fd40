package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"foosball/internal/logger"
	"foosball/internal/scene"
	"foosball/pkg/core"
	"foosball/pkg/protocol"
)

// Mode 同步模式，每个 tick 根据链路状态重新计算
type Mode int

const (
	ModeLocalFallback Mode = iota
	ModeRemoteAuthoritative
)

func (m Mode) String() string {
	if m == ModeRemoteAuthoritative {
		return "remote"
	}
	return "local"
}

// LinkPort StateSync 依赖的链路操作
type LinkPort interface {
	State() ConnectionState
	SendSelection(index int)
	SendMove(posFraction, rotDelta float64)
	Subscribe() <-chan protocol.StateUpdate
	Opened() <-chan struct{}
}

// SyncOptions StateSync 参数
type SyncOptions struct {
	Side        core.Side
	Table       core.Table
	GracePeriod time.Duration
	Logger      *slog.Logger
}

// StateSync 在本地模拟和远端权威之间切换，所有场景写入都经过同一把锁
type StateSync struct {
	link  LinkPort
	side  core.Side
	table core.Table
	grace time.Duration
	log   *slog.Logger

	mu        sync.Mutex
	selection core.Selection
	binding   *sceneBinding
	mode      Mode
	announced bool
	lastFrame Frame

	startOnce sync.Once
}

func NewStateSync(link LinkPort, opts SyncOptions) *StateSync {
	if opts.Logger == nil {
		opts.Logger = logger.L()
	}
	if opts.Table.Width == 0 {
		opts.Table = core.DefaultTable()
	}
	if opts.GracePeriod < 0 {
		opts.GracePeriod = 0
	}
	return &StateSync{
		link:  link,
		side:  opts.Side,
		table: opts.Table,
		grace: opts.GracePeriod,
		log:   opts.Logger.With("component", "sync"),
	}
}

// AttachModel 模型加载完成后绑定场景节点（加载回调中调用）
func (s *StateSync) AttachModel(model *scene.Model) {
	b := bindScene(model)
	s.mu.Lock()
	s.binding = b
	s.mu.Unlock()
	s.log.Info("球桌模型已绑定", "nodes", len(model.Graph().Names()))
}

// Start 等待链路打开，宽限期结束后宣告选择并开始应用远端状态
func (s *StateSync) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.run(ctx)
	})
}

func (s *StateSync) run(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-s.link.Opened():
	}

	timer := time.NewTimer(s.grace)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	s.mu.Lock()
	index := s.selection.Index()
	s.announced = true
	s.mu.Unlock()
	s.link.SendSelection(index)

	updates := s.link.Subscribe()
	s.log.Debug("开始接收远端状态", "selection", index)
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				s.log.Info("远端状态结束，切换到本地模拟")
				return
			}
			s.ApplyState(update)
		}
	}
}

// Tick 每帧调用一次：更新选择，本地模式下积分位移，远端模式下发送 move
func (s *StateSync) Tick(frame Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = s.currentMode()
	s.lastFrame = frame

	if frame.SelectionDelta != 0 && s.selection.Step(frame.SelectionDelta) {
		s.onSelectionChanged()
	}

	cmd := frame.Command
	if cmd.IsZero() {
		return
	}

	index := s.selection.Index()
	switch s.mode {
	case ModeLocalFallback:
		// 模型未加载时本帧命令直接丢弃
		s.binding.integrate(s.side, index, cmd)
	case ModeRemoteAuthoritative:
		if !cmd.ExceedsMoveThreshold() {
			return
		}
		spec := core.NewRodSpec(s.table, s.side, index, 0)
		s.link.SendMove(spec.DisplacementToFraction(cmd.DZ), cmd.DRot)
	}
}

// SetSelection 直接设置选择（数字键），越界时饱和
func (s *StateSync) SetSelection(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = s.currentMode()
	if s.selection.Set(index) {
		s.onSelectionChanged()
	}
}

// onSelectionChanged 调用方持有锁
func (s *StateSync) onSelectionChanged() {
	index := s.selection.Index()
	s.log.Debug("切换控制杆", "selection", index, "rod", s.selection.Rod())
	if s.mode == ModeRemoteAuthoritative {
		s.link.SendSelection(index)
	}
}

// ApplyState 把远端快照写入场景；链路未打开时丢弃（本地模拟拥有场景）
func (s *StateSync) ApplyState(update protocol.StateUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentMode() != ModeRemoteAuthoritative {
		return
	}
	s.binding.apply(&update)
}

func (s *StateSync) currentMode() Mode {
	if s.link.State() == StateOpen {
		return ModeRemoteAuthoritative
	}
	return ModeLocalFallback
}

// Status 界面显示用的快照
type Status struct {
	Mode      Mode
	Link      ConnectionState
	Selection int
	Rod       core.RodType
	Announced bool
	ModelOK   bool
	LastFrame Frame
}

func (s *StateSync) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Mode:      s.mode,
		Link:      s.link.State(),
		Selection: s.selection.Index(),
		Rod:       s.selection.Rod(),
		Announced: s.announced,
		ModelOK:   s.binding != nil,
		LastFrame: s.lastFrame,
	}
}

// Selection 当前选中的杆类型下标
func (s *StateSync) Selection() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Index()
}

// Mode 最近一次 tick 的模式
func (s *StateSync) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}
