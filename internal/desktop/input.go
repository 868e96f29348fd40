package desktop

import (
	"foosball/internal/client"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// keyboardPump 把 ebiten 的按键边沿转换成 Keyboard 的按下/松开事件
type keyboardPump struct {
	keys     KeyMap
	pressed  []ebiten.Key
	released []ebiten.Key
	focused  bool
}

func newKeyboardPump(keys KeyMap) *keyboardPump {
	return &keyboardPump{keys: keys, focused: true}
}

// pump 返回本帧按下的数字选择键，没有时返回 -1
func (p *keyboardPump) pump(kb *client.Keyboard) int {
	// 失去焦点时收不到松开事件
	focused := ebiten.IsFocused()
	if !focused && p.focused {
		kb.ReleaseAll()
	}
	p.focused = focused

	selection := -1
	p.pressed = inpututil.AppendJustPressedKeys(p.pressed[:0])
	for _, key := range p.pressed {
		if action, ok := p.keys[key]; ok {
			kb.Press(action)
		}
		if index, ok := selectionKeys[key]; ok {
			selection = index
		}
	}

	p.released = inpututil.AppendJustReleasedKeys(p.released[:0])
	for _, key := range p.released {
		if action, ok := p.keys[key]; ok {
			kb.Release(action)
		}
	}
	return selection
}

// gamepadSampler 读取第一个标准布局手柄
type gamepadSampler struct {
	ids []ebiten.GamepadID
}

func (s *gamepadSampler) sample() client.GamepadState {
	s.ids = ebiten.AppendGamepadIDs(s.ids[:0])
	for _, id := range s.ids {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		pressed := func(b ebiten.StandardGamepadButton) bool {
			return ebiten.IsStandardGamepadButtonPressed(id, b)
		}
		return client.GamepadState{
			Name:         ebiten.GamepadName(id),
			LinearAxis:   ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal),
			RotationAxis: -ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical),
			Precision:    pressed(ebiten.StandardGamepadButtonFrontTopLeft),
			SelectPrev:   pressed(ebiten.StandardGamepadButtonRightLeft),
			SelectNext:   pressed(ebiten.StandardGamepadButtonRightRight),
			DPadUp:       pressed(ebiten.StandardGamepadButtonLeftTop),
			DPadDown:     pressed(ebiten.StandardGamepadButtonLeftBottom),
			Trigger:      pressed(ebiten.StandardGamepadButtonFrontBottomRight),
		}
	}
	return client.GamepadState{}
}
