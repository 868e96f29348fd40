package desktop

import (
	"fmt"

	"foosball/internal/client"
	"foosball/internal/config"

	"github.com/hajimehoshi/ebiten/v2"
)

// KeyMap 键盘按键到控制动作的映射
type KeyMap map[ebiten.Key]client.Action

// selectionKeys 数字键直接设置选择
var selectionKeys = map[ebiten.Key]int{
	ebiten.KeyDigit1: 0,
	ebiten.KeyDigit2: 1,
	ebiten.KeyDigit3: 2,
	ebiten.KeyDigit4: 3,
}

// NewKeyMap 解析配置中的键名（ebiten.Key 的文本形式，例如 ArrowLeft、W、Space）
func NewKeyMap(b config.KeyBinding) (KeyMap, error) {
	entries := []struct {
		name   string
		action client.Action
	}{
		{b.Left, client.ActionLeft},
		{b.Right, client.ActionRight},
		{b.RotateUp, client.ActionRotateUp},
		{b.RotateDown, client.ActionRotateDown},
		{b.SelectPrev, client.ActionSelectPrev},
		{b.SelectNext, client.ActionSelectNext},
		{b.Slow, client.ActionSlow},
		{b.Shot, client.ActionShot},
	}

	m := make(KeyMap, len(entries))
	for _, e := range entries {
		if e.name == "" {
			continue
		}
		var key ebiten.Key
		if err := key.UnmarshalText([]byte(e.name)); err != nil {
			return nil, fmt.Errorf("按键 %s 无效: %w", e.action, err)
		}
		if _, ok := selectionKeys[key]; ok {
			return nil, fmt.Errorf("按键 %s 与数字选择键冲突", e.name)
		}
		if prev, ok := m[key]; ok {
			return nil, fmt.Errorf("按键 %s 同时绑定到 %s 和 %s", e.name, prev, e.action)
		}
		m[key] = e.action
	}
	return m, nil
}
