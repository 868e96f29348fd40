package protocol

import (
	"encoding/json"
	"fmt"
)

// JSON WebSocket 文本帧使用的编解码器
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

type selectionWire struct {
	Type      string `json:"type"`
	Selection int    `json:"selection"`
}

type moveWire struct {
	Type string  `json:"type"`
	Pos  float64 `json:"pos"`
	Rot  float64 `json:"rot"`
}

type stateWire struct {
	Type    string    `json:"type"`
	RedPos  []float64 `json:"redpos"`
	BluePos []float64 `json:"bluepos"`
	RedRot  []float64 `json:"redrot"`
	BlueRot []float64 `json:"bluerot"`
	BallPos []float64 `json:"ballpos"`
}

// stateIn 入站快照：元素为指针，null 与缺失的值可以被识别
type stateIn struct {
	RedPos  []*float64 `json:"redpos"`
	BluePos []*float64 `json:"bluepos"`
	RedRot  []*float64 `json:"redrot"`
	BlueRot []*float64 `json:"bluerot"`
	BallPos []*float64 `json:"ballpos"`
}

type envelope struct {
	Type *string `json:"type"`
}

type selectionIn struct {
	Selection *int `json:"selection"`
}

type moveIn struct {
	Pos *float64 `json:"pos"`
	Rot *float64 `json:"rot"`
}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg *Message) ([]byte, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case KindSelection:
		return json.Marshal(selectionWire{Type: TypeSelection, Selection: msg.Selection.Index})
	case KindMove:
		return json.Marshal(moveWire{Type: TypeMove, Pos: msg.Move.Pos, Rot: msg.Move.Rot})
	case KindState:
		s := msg.State
		return json.Marshal(stateWire{
			Type:    TypePos,
			RedPos:  s.RedPos[:],
			BluePos: s.BluePos[:],
			RedRot:  s.RedRot[:],
			BlueRot: s.BlueRot[:],
			BallPos: s.Ball[:],
		})
	}
	return nil, fmt.Errorf("无法编码的消息类型: %s", msg.Kind)
}

// Unmarshal 先读取 type 字段再按类型解析，未知类型返回 KindUnknown 而不是错误
func (jsonCodec) Unmarshal(data []byte) (*Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == nil {
		return nil, fmt.Errorf("%w: type missing", ErrMalformed)
	}

	switch *env.Type {
	case TypeSelection:
		var in selectionIn
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if in.Selection == nil {
			return nil, fmt.Errorf("%w: selection missing", ErrMalformed)
		}
		return NewSelection(*in.Selection), nil

	case TypeMove:
		var in moveIn
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if in.Pos == nil || in.Rot == nil {
			return nil, fmt.Errorf("%w: move requires pos and rot", ErrMalformed)
		}
		return NewMove(*in.Pos, *in.Rot), nil

	case TypePos:
		var in stateIn
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		update, err := in.toUpdate()
		if err != nil {
			return nil, err
		}
		return NewState(update), nil

	default:
		return &Message{Kind: KindUnknown, Type: *env.Type}, nil
	}
}

func (in stateIn) toUpdate() (StateUpdate, error) {
	var w stateWire
	fields := []struct {
		name string
		src  []*float64
		dst  *[]float64
	}{
		{"redpos", in.RedPos, &w.RedPos},
		{"bluepos", in.BluePos, &w.BluePos},
		{"redrot", in.RedRot, &w.RedRot},
		{"bluerot", in.BlueRot, &w.BlueRot},
		{"ballpos", in.BallPos, &w.BallPos},
	}
	for _, f := range fields {
		values, err := derefValues(f.name, f.src)
		if err != nil {
			return StateUpdate{}, err
		}
		*f.dst = values
	}
	return w.toUpdate()
}

// derefValues 数组中出现 null 时整条消息视为格式错误
func derefValues(field string, src []*float64) ([]float64, error) {
	if src == nil {
		return nil, nil
	}
	out := make([]float64, len(src))
	for i, v := range src {
		if v == nil {
			return nil, fmt.Errorf("%w: %s[%d] is null", ErrMalformed, field, i)
		}
		out[i] = *v
	}
	return out, nil
}

func (w stateWire) toUpdate() (StateUpdate, error) {
	var (
		update StateUpdate
		err    error
	)
	if update.RedPos, err = copyRods("redpos", w.RedPos); err != nil {
		return update, err
	}
	if update.BluePos, err = copyRods("bluepos", w.BluePos); err != nil {
		return update, err
	}
	if update.RedRot, err = copyRods("redrot", w.RedRot); err != nil {
		return update, err
	}
	if update.BlueRot, err = copyRods("bluerot", w.BlueRot); err != nil {
		return update, err
	}
	if update.Ball, err = copyBall(w.BallPos); err != nil {
		return update, err
	}
	return update, update.Validate()
}
