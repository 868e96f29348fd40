package client

import "sync"

// Action 键盘映射到的控制动作
type Action int

const (
	ActionLeft Action = iota
	ActionRight
	ActionRotateUp
	ActionRotateDown
	ActionSelectPrev
	ActionSelectNext
	ActionSlow
	ActionShot
	actionCount
)

func (a Action) String() string {
	switch a {
	case ActionLeft:
		return "left"
	case ActionRight:
		return "right"
	case ActionRotateUp:
		return "rotate_up"
	case ActionRotateDown:
		return "rotate_down"
	case ActionSelectPrev:
		return "select_prev"
	case ActionSelectNext:
		return "select_next"
	case ActionSlow:
		return "slow"
	case ActionShot:
		return "shot"
	}
	return "unknown"
}

// Keyboard 由按下/松开事件驱动的键盘状态（不轮询）
// 选择键和射门键在按下事件上记录一次边沿，系统的按键自动重复不会再次触发
type Keyboard struct {
	mu      sync.Mutex
	buttons [actionCount]Button

	selectDelta int
	shot        bool
}

func NewKeyboard() *Keyboard {
	return &Keyboard{}
}

// Press 处理按下事件
func (k *Keyboard) Press(a Action) {
	if a < 0 || a >= actionCount {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.buttons[a].Update(true) != EdgePress {
		return
	}
	switch a {
	case ActionSelectPrev:
		k.selectDelta--
	case ActionSelectNext:
		k.selectDelta++
	case ActionShot:
		k.shot = true
	}
}

// Release 处理松开事件
func (k *Keyboard) Release(a Action) {
	if a < 0 || a >= actionCount {
		return
	}
	k.mu.Lock()
	k.buttons[a].Update(false)
	k.mu.Unlock()
}

// Pressed 动作对应的键当前是否按下
func (k *Keyboard) Pressed(a Action) bool {
	if a < 0 || a >= actionCount {
		return false
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.buttons[a].Pressed()
}

// ReleaseAll 松开所有键（窗口失去焦点时使用）
func (k *Keyboard) ReleaseAll() {
	k.mu.Lock()
	for i := range k.buttons {
		k.buttons[i].Reset()
	}
	k.mu.Unlock()
}

// levels 读取连续输入的方向电平
func (k *Keyboard) levels() (dz, drot float64, slow bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.buttons[ActionRight].Pressed() {
		dz++
	}
	if k.buttons[ActionLeft].Pressed() {
		dz--
	}
	if k.buttons[ActionRotateUp].Pressed() {
		drot++
	}
	if k.buttons[ActionRotateDown].Pressed() {
		drot--
	}
	return dz, drot, k.buttons[ActionSlow].Pressed()
}

// takeEdges 取出并清空上次采样以来的边沿
func (k *Keyboard) takeEdges() (selectDelta int, shot bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	selectDelta, shot = k.selectDelta, k.shot
	k.selectDelta, k.shot = 0, false
	return selectDelta, shot
}
