package core

import "math"

// InputCommand 一帧内对选中杆的输入（已过死区和修饰键缩放）
type InputCommand struct {
	DZ   float64 // 线位移
	DRot float64 // 转角增量（弧度）
}

// Snap 将接近 0 的分量置为精确的 0，避免产生无意义的网络流量
func (c InputCommand) Snap() InputCommand {
	if math.Abs(c.DZ) < LinearEpsilon {
		c.DZ = 0
	}
	if math.Abs(c.DRot) < RotationEpsilon {
		c.DRot = 0
	}
	return c
}

// Scale 两个分量同时缩放
func (c InputCommand) Scale(f float64) InputCommand {
	return InputCommand{DZ: c.DZ * f, DRot: c.DRot * f}
}

// IsZero 是否没有输入
func (c InputCommand) IsZero() bool {
	return c.DZ == 0 && c.DRot == 0
}

// ExceedsMoveThreshold 远端模式下是否值得发送 move
func (c InputCommand) ExceedsMoveThreshold() bool {
	return math.Abs(c.DZ) > MoveEpsilon || math.Abs(c.DRot) > MoveEpsilon
}
