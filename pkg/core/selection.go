package core

// Selection 当前接收输入的杆类型下标，始终位于 [0, RodTypeCount)
type Selection struct {
	index int
}

// NewSelection 创建选择，越界值会被截断到边界
func NewSelection(index int) Selection {
	var s Selection
	s.Set(index)
	return s
}

// Index 当前下标
func (s Selection) Index() int {
	return s.index
}

// Rod 当前选中的杆类型
func (s Selection) Rod() RodType {
	return RodType(s.index)
}

// Set 直接设置下标（配置界面使用），越界时饱和而不是回绕
func (s *Selection) Set(index int) bool {
	clamped := ClampSelection(index)
	changed := clamped != s.index
	s.index = clamped
	return changed
}

// Step 按增量移动选择，返回是否发生变化
func (s *Selection) Step(delta int) bool {
	return s.Set(s.index + delta)
}

// ClampSelection 将下标截断到合法范围
func ClampSelection(index int) int {
	if index < 0 {
		return 0
	}
	if index >= RodTypeCount {
		return RodTypeCount - 1
	}
	return index
}
