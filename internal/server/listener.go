package server

import (
	"fmt"
	"net"

	kcp "github.com/xtaci/kcp-go/v5"
)

// KCP 快速模式参数，与客户端一致
const (
	kcpNoDelay   = 1
	kcpInterval  = 10 // ms
	kcpResend    = 2
	kcpNoCongest = 1
	kcpWindow    = 128
)

// ServerListener 流式传输的监听器
type ServerListener interface {
	Accept() (net.Conn, error)
	Close() error
	Addr() net.Addr
}

func newListener(proto, addr string) (ServerListener, error) {
	switch proto {
	case "", "tcp":
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, err
		}
		return &tcpListener{Listener: listener}, nil
	case "kcp":
		listener, err := kcp.ListenWithOptions(addr, nil, 0, 0)
		if err != nil {
			return nil, err
		}
		return &kcpListener{listener: listener}, nil
	default:
		return nil, fmt.Errorf("不支持的协议: %s", proto)
	}
}

type tcpListener struct {
	net.Listener
}

// Accept 开启 TCP_NODELAY，move 命令很小，不等待合包
func (l *tcpListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(true)
	}
	return conn, nil
}

type kcpListener struct {
	listener *kcp.Listener
}

// Accept 与客户端一致使用流模式，消息边界由长度前缀决定
func (l *kcpListener) Accept() (net.Conn, error) {
	session, err := l.listener.AcceptKCP()
	if err != nil {
		return nil, err
	}
	session.SetStreamMode(true)
	session.SetNoDelay(kcpNoDelay, kcpInterval, kcpResend, kcpNoCongest)
	session.SetWindowSize(kcpWindow, kcpWindow)
	return session, nil
}

func (l *kcpListener) Close() error {
	return l.listener.Close()
}

func (l *kcpListener) Addr() net.Addr {
	return l.listener.Addr()
}
