package client

// ButtonState 按键状态机的两个状态
type ButtonState int

const (
	ButtonReleased ButtonState = iota
	ButtonPressed
)

// Edge 一次采样产生的边沿
type Edge int

const (
	EdgeNone Edge = iota
	EdgePress
	EdgeRelease
)

// Button 记录上一帧状态，把电平采样转换成边沿（按住不会重复触发）
type Button struct {
	state ButtonState
}

// Update 输入本帧的电平，返回状态变化产生的边沿
func (b *Button) Update(pressed bool) Edge {
	switch {
	case pressed && b.state == ButtonReleased:
		b.state = ButtonPressed
		return EdgePress
	case !pressed && b.state == ButtonPressed:
		b.state = ButtonReleased
		return EdgeRelease
	}
	return EdgeNone
}

// Pressed 当前是否按下
func (b *Button) Pressed() bool {
	return b.state == ButtonPressed
}

// Reset 回到松开状态（设备断开时使用），不产生边沿
func (b *Button) Reset() {
	b.state = ButtonReleased
}
