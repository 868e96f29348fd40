package protocol

import (
	"errors"
	"fmt"
	"math"

	"foosball/pkg/core"
)

// 协议中的消息类型
const (
	TypeSelection = "selection"
	TypeMove      = "move"
	TypePos       = "pos"
)

// ErrMalformed 消息缺少字段、长度不符或数值非法
var ErrMalformed = errors.New("malformed message")

// Kind 消息种类
type Kind int

const (
	KindUnknown Kind = iota
	KindSelection
	KindMove
	KindState
)

func (k Kind) String() string {
	switch k {
	case KindSelection:
		return TypeSelection
	case KindMove:
		return TypeMove
	case KindState:
		return TypePos
	}
	return "unknown"
}

// SelectionCommand 客户端选择控制的杆类型
type SelectionCommand struct {
	Index int
}

// MoveCommand 客户端请求的位移（全行程比例）和转角增量（弧度）
type MoveCommand struct {
	Pos float64
	Rot float64
}

// StateUpdate 远端权威发来的绝对状态快照
// 杆位置为行程比例 (0..1)，杆转角单位为度，球为两个球场归一化坐标
type StateUpdate struct {
	RedPos  [core.RodsPerSide]float64
	BluePos [core.RodsPerSide]float64
	RedRot  [core.RodsPerSide]float64
	BlueRot [core.RodsPerSide]float64
	Ball    [2]float64
}

// Message 解码后的消息（按 Kind 只有一个负载非空）
type Message struct {
	Kind      Kind
	Type      string // 原始类型字段，未知类型时用于日志
	Selection *SelectionCommand
	Move      *MoveCommand
	State     *StateUpdate
}

// ========== 辅助构造方法 ==========

// NewSelection 构造选择消息
func NewSelection(index int) *Message {
	return &Message{
		Kind:      KindSelection,
		Type:      TypeSelection,
		Selection: &SelectionCommand{Index: index},
	}
}

// NewMove 构造移动消息
func NewMove(pos, rot float64) *Message {
	return &Message{
		Kind: KindMove,
		Type: TypeMove,
		Move: &MoveCommand{Pos: pos, Rot: rot},
	}
}

// NewState 构造状态消息
func NewState(update StateUpdate) *Message {
	return &Message{
		Kind:  KindState,
		Type:  TypePos,
		State: &update,
	}
}

// Validate 检查负载是否与 Kind 一致且数值有限
func (m *Message) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil message", ErrMalformed)
	}
	switch m.Kind {
	case KindSelection:
		if m.Selection == nil {
			return fmt.Errorf("%w: selection payload missing", ErrMalformed)
		}
	case KindMove:
		if m.Move == nil {
			return fmt.Errorf("%w: move payload missing", ErrMalformed)
		}
		if !finite(m.Move.Pos, m.Move.Rot) {
			return fmt.Errorf("%w: move has non-finite value", ErrMalformed)
		}
	case KindState:
		if m.State == nil {
			return fmt.Errorf("%w: pos payload missing", ErrMalformed)
		}
		return m.State.Validate()
	}
	return nil
}

// Validate 检查快照中的所有数值是否有限
func (s *StateUpdate) Validate() error {
	for i := 0; i < core.RodsPerSide; i++ {
		if !finite(s.RedPos[i], s.BluePos[i], s.RedRot[i], s.BlueRot[i]) {
			return fmt.Errorf("%w: rod %d has non-finite value", ErrMalformed, i)
		}
	}
	if !finite(s.Ball[0], s.Ball[1]) {
		return fmt.Errorf("%w: ball has non-finite value", ErrMalformed)
	}
	return nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// copyRods 将切片复制到定长数组，长度必须等于每方杆数
func copyRods(field string, src []float64) ([core.RodsPerSide]float64, error) {
	var dst [core.RodsPerSide]float64
	if src == nil {
		return dst, fmt.Errorf("%w: %s missing", ErrMalformed, field)
	}
	if len(src) != core.RodsPerSide {
		return dst, fmt.Errorf("%w: %s has %d values, want %d", ErrMalformed, field, len(src), core.RodsPerSide)
	}
	copy(dst[:], src)
	return dst, nil
}

// copyBall 球坐标至少两个分量（原始服务端会附带第三个 0）
func copyBall(src []float64) ([2]float64, error) {
	var dst [2]float64
	if src == nil {
		return dst, fmt.Errorf("%w: ballpos missing", ErrMalformed)
	}
	if len(src) < 2 {
		return dst, fmt.Errorf("%w: ballpos has %d values, want 2", ErrMalformed, len(src))
	}
	copy(dst[:], src[:2])
	return dst, nil
}
