package server

import "foosball/pkg/protocol"

// Session 桌面上的一个客户端连接
type Session interface {
	ID() int32
	Codec() protocol.Codec
	Send(data []byte) error
	Close()
}
