package server

import (
	"fmt"

	"foosball/pkg/protocol"
)

// DecodePacket 解析服务器收到的数据包，未知类型返回 EventUnknown
func DecodePacket(codec protocol.Codec, data []byte) (*TableEvent, error) {
	msg, err := codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("解析包失败: %w", err)
	}

	switch msg.Kind {
	case protocol.KindSelection:
		return &TableEvent{Kind: EventSelection, Selection: msg.Selection.Index}, nil
	case protocol.KindMove:
		return &TableEvent{
			Kind: EventMove,
			Move: &MoveEvent{Pos: msg.Move.Pos, Rot: msg.Move.Rot},
		}, nil
	default:
		return &TableEvent{Kind: EventUnknown}, nil
	}
}

// EncodeState 按会话的编码序列化状态快照
func EncodeState(codec protocol.Codec, update protocol.StateUpdate) ([]byte, error) {
	data, err := codec.Marshal(protocol.NewState(update))
	if err != nil {
		return nil, fmt.Errorf("序列化状态失败: %w", err)
	}
	return data, nil
}
