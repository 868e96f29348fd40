package protocol

import "fmt"

// Codec 消息编解码器
type Codec interface {
	Name() string
	Marshal(msg *Message) ([]byte, error)
	Unmarshal(data []byte) (*Message, error)
}

// CodecByName 根据配置名称选择编解码器
func CodecByName(name string) (Codec, error) {
	switch name {
	case "json":
		return JSON, nil
	case "wire", "proto", "protobuf":
		return Wire, nil
	default:
		return nil, fmt.Errorf("不支持的编码: %s", name)
	}
}
