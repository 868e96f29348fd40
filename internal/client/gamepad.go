package client

import "math"

// GamepadState 一帧内对标准布局手柄的采样
// Name 为空表示没有手柄，此时其余字段被忽略
type GamepadState struct {
	Name string

	LinearAxis   float64 // 平移，[-1, 1]
	RotationAxis float64 // 转动，[-1, 1]

	Precision  bool // 按住时速度除以精细系数
	SelectPrev bool // 面键
	SelectNext bool // 面键
	DPadUp     bool
	DPadDown   bool
	Trigger    bool // 射门
}

// Present 手柄是否存在
func (g GamepadState) Present() bool {
	return g.Name != ""
}

// gamepadEdges 手柄按键的上一帧状态
type gamepadEdges struct {
	selectPrev Button
	selectNext Button
	dpadUp     Button
	dpadDown   Button
	trigger    Button
}

// update 返回本帧的选择变化和射门边沿
func (e *gamepadEdges) update(g GamepadState) (selectDelta int, shot bool) {
	if e.selectPrev.Update(g.SelectPrev) == EdgePress {
		selectDelta--
	}
	if e.dpadUp.Update(g.DPadUp) == EdgePress {
		selectDelta--
	}
	if e.selectNext.Update(g.SelectNext) == EdgePress {
		selectDelta++
	}
	if e.dpadDown.Update(g.DPadDown) == EdgePress {
		selectDelta++
	}
	shot = e.trigger.Update(g.Trigger) == EdgePress
	return selectDelta, shot
}

func (e *gamepadEdges) reset() {
	e.selectPrev.Reset()
	e.selectNext.Reset()
	e.dpadUp.Reset()
	e.dpadDown.Reset()
	e.trigger.Reset()
}

// applyDeadzone 绝对值小于死区的轴值视为 0
func applyDeadzone(v, deadzone float64) float64 {
	if math.Abs(v) < deadzone {
		return 0
	}
	return v
}
