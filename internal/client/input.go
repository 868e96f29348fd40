package client

import (
	"foosball/pkg/core"
)

// InputOptions 输入融合参数
type InputOptions struct {
	LinearSpeed     float64
	RotationSpeed   float64
	PrecisionFactor float64
	ShotImpulse     float64
	AxisDeadzone    float64
}

// DefaultInputOptions 默认输入参数
func DefaultInputOptions() InputOptions {
	return InputOptions{
		LinearSpeed:     core.DefaultLinearSpeed,
		RotationSpeed:   core.DefaultRotationSpeed,
		PrecisionFactor: core.DefaultPrecisionFactor,
		ShotImpulse:     core.DefaultShotImpulse,
		AxisDeadzone:    core.DefaultAxisDeadzone,
	}
}

// Frame 一个 tick 的融合结果
type Frame struct {
	Command        core.InputCommand
	SelectionDelta int  // -1, 0, +1
	Shot           bool // 本帧触发了射门脉冲（已计入 Command.DRot）
}

// InputFusion 合并键盘和手柄输入
// 手柄存在时只有手柄驱动连续轴，键盘的选择边沿仍然生效
type InputFusion struct {
	opts     InputOptions
	keyboard *Keyboard
	pad      gamepadEdges
}

func NewInputFusion(opts InputOptions) *InputFusion {
	if opts.PrecisionFactor <= 0 {
		opts.PrecisionFactor = 1
	}
	return &InputFusion{
		opts:     opts,
		keyboard: NewKeyboard(),
	}
}

// Keyboard 接收按键事件的键盘状态
func (f *InputFusion) Keyboard() *Keyboard {
	return f.keyboard
}

// Sample 读取本帧输入，每个 tick 调用一次
func (f *InputFusion) Sample(pad GamepadState) Frame {
	var frame Frame
	var cmd core.InputCommand
	var slow bool

	keySelect, keyShot := f.keyboard.takeEdges()

	if pad.Present() {
		cmd.DZ = applyDeadzone(pad.LinearAxis, f.opts.AxisDeadzone) * f.opts.LinearSpeed
		cmd.DRot = applyDeadzone(pad.RotationAxis, f.opts.AxisDeadzone) * f.opts.RotationSpeed
		slow = pad.Precision

		padSelect, padShot := f.pad.update(pad)
		keySelect += padSelect
		keyShot = keyShot || padShot
	} else {
		f.pad.reset()
		dz, drot, keySlow := f.keyboard.levels()
		cmd.DZ = dz * f.opts.LinearSpeed
		cmd.DRot = drot * f.opts.RotationSpeed
		slow = keySlow
	}

	if slow {
		cmd = cmd.Scale(1 / f.opts.PrecisionFactor)
	}
	if keyShot {
		cmd.DRot += f.opts.ShotImpulse
		frame.Shot = true
	}

	frame.Command = cmd.Snap()
	frame.SelectionDelta = clampDelta(keySelect)
	return frame
}

func clampDelta(d int) int {
	if d > 1 {
		return 1
	}
	if d < -1 {
		return -1
	}
	return d
}
