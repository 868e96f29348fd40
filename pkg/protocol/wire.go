package protocol

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Wire 长度前缀流式传输（tcp/kcp）使用的二进制编解码器，采用 protobuf 线格式
var Wire Codec = wireCodec{}

// 字段编号
const (
	fieldType      protowire.Number = 1
	fieldSelection protowire.Number = 2
	fieldMovePos   protowire.Number = 3
	fieldMoveRot   protowire.Number = 4
	fieldRedPos    protowire.Number = 5
	fieldBluePos   protowire.Number = 6
	fieldRedRot    protowire.Number = 7
	fieldBlueRot   protowire.Number = 8
	fieldBallPos   protowire.Number = 9
)

type wireCodec struct{}

func (wireCodec) Name() string { return "wire" }

func (wireCodec) Marshal(msg *Message) ([]byte, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	b := make([]byte, 0, 128)
	switch msg.Kind {
	case KindSelection:
		b = appendString(b, fieldType, TypeSelection)
		b = protowire.AppendTag(b, fieldSelection, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(msg.Selection.Index)))

	case KindMove:
		b = appendString(b, fieldType, TypeMove)
		b = appendDouble(b, fieldMovePos, msg.Move.Pos)
		b = appendDouble(b, fieldMoveRot, msg.Move.Rot)

	case KindState:
		s := msg.State
		b = appendString(b, fieldType, TypePos)
		b = appendPacked(b, fieldRedPos, s.RedPos[:])
		b = appendPacked(b, fieldBluePos, s.BluePos[:])
		b = appendPacked(b, fieldRedRot, s.RedRot[:])
		b = appendPacked(b, fieldBlueRot, s.BlueRot[:])
		b = appendPacked(b, fieldBallPos, s.Ball[:])

	default:
		return nil, fmt.Errorf("无法编码的消息类型: %s", msg.Kind)
	}
	return b, nil
}

// wireFields 解码过程中收集到的字段
type wireFields struct {
	typ       *string
	selection *int64
	pos, rot  *float64
	packed    map[protowire.Number][]float64
}

func (wireCodec) Unmarshal(data []byte) (*Message, error) {
	f := wireFields{packed: make(map[protowire.Number][]float64)}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		data = data[n:]

		switch {
		case num == fieldType && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(data)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			f.typ = &v
			n = m

		case num == fieldSelection && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			idx := protowire.DecodeZigZag(v)
			f.selection = &idx
			n = m

		case (num == fieldMovePos || num == fieldMoveRot) && typ == protowire.Fixed64Type:
			v, m := protowire.ConsumeFixed64(data)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			d := math.Float64frombits(v)
			if num == fieldMovePos {
				f.pos = &d
			} else {
				f.rot = &d
			}
			n = m

		case num >= fieldRedPos && num <= fieldBallPos && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(m))
			}
			values, err := consumePacked(v)
			if err != nil {
				return nil, err
			}
			f.packed[num] = values
			n = m

		default:
			// 未知字段直接跳过
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
		}
		data = data[n:]
	}

	return f.message()
}

func (f wireFields) message() (*Message, error) {
	if f.typ == nil {
		return nil, fmt.Errorf("%w: type missing", ErrMalformed)
	}

	switch *f.typ {
	case TypeSelection:
		if f.selection == nil {
			return nil, fmt.Errorf("%w: selection missing", ErrMalformed)
		}
		return NewSelection(int(*f.selection)), nil

	case TypeMove:
		if f.pos == nil || f.rot == nil {
			return nil, fmt.Errorf("%w: move requires pos and rot", ErrMalformed)
		}
		msg := NewMove(*f.pos, *f.rot)
		if err := msg.Validate(); err != nil {
			return nil, err
		}
		return msg, nil

	case TypePos:
		w := stateWire{
			Type:    TypePos,
			RedPos:  f.packed[fieldRedPos],
			BluePos: f.packed[fieldBluePos],
			RedRot:  f.packed[fieldRedRot],
			BlueRot: f.packed[fieldBlueRot],
			BallPos: f.packed[fieldBallPos],
		}
		update, err := w.toUpdate()
		if err != nil {
			return nil, err
		}
		return NewState(update), nil

	default:
		return &Message{Kind: KindUnknown, Type: *f.typ}, nil
	}
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

// appendPacked 以 packed repeated double 编码
func appendPacked(b []byte, num protowire.Number, values []float64) []byte {
	payload := make([]byte, 0, 8*len(values))
	for _, v := range values {
		payload = protowire.AppendFixed64(payload, math.Float64bits(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

func consumePacked(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("%w: packed doubles length %d", ErrMalformed, len(b))
	}
	values := make([]float64, 0, len(b)/8)
	for len(b) > 0 {
		v, n := protowire.ConsumeFixed64(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		values = append(values, math.Float64frombits(v))
		b = b[n:]
	}
	return values, nil
}
