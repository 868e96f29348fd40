package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// 流式传输（tcp/kcp）的长度前缀帧
const (
	MaxFrameSize     = 4096 // 单帧最大字节数
	LengthPrefixSize = 4    // 大端 uint32
)

// ReadFrame 读取一条长度前缀消息，跳过长度为 0 的帧
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [LengthPrefixSize]byte
	for {
		// 读取消息长度（4 字节）
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return nil, err
		}
		length := binary.BigEndian.Uint32(header[:])

		// 检查消息大小
		if length > MaxFrameSize {
			return nil, fmt.Errorf("消息过大 (%d bytes)", length)
		}
		if length == 0 {
			continue
		}

		// 读取消息体
		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("读取数据失败: %w", err)
		}
		return data, nil
	}
}

// WriteFrame 写入长度前缀和消息体，合并为一次 Write
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) > MaxFrameSize {
		return fmt.Errorf("消息过大 (%d bytes)", len(data))
	}
	buf := make([]byte, LengthPrefixSize+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[LengthPrefixSize:], data)
	_, err := w.Write(buf)
	return err
}
