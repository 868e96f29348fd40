package scene

import (
	"foosball/pkg/core"
)

// BallNodeName 球节点名
const BallNodeName = "ball"

// 杆沿球场长度方向的排列顺序（从红方球门到蓝方球门）
var rodLayout = [...]struct {
	side  core.Side
	index int
}{
	{core.SideRed, int(core.RodGoalie)},
	{core.SideRed, int(core.RodTwoBar)},
	{core.SideBlue, int(core.RodThreeBar)},
	{core.SideRed, int(core.RodFiveBar)},
	{core.SideBlue, int(core.RodFiveBar)},
	{core.SideRed, int(core.RodThreeBar)},
	{core.SideBlue, int(core.RodTwoBar)},
	{core.SideBlue, int(core.RodGoalie)},
}

// Model 加载完成的球桌模型
type Model struct {
	table core.Table
	graph *Graph

	// 杆规格在加载时记录一次，之后不随节点移动
	specs [len(core.Sides)][core.RodsPerSide]core.RodSpec
	found [len(core.Sides)][core.RodsPerSide]bool
}

// NewModel 包装已有的节点图，以各杆节点当前的 z 坐标作为零点
func NewModel(table core.Table, graph *Graph) *Model {
	m := &Model{table: table, graph: graph}
	for _, side := range core.Sides {
		for i := 0; i < core.RodsPerSide; i++ {
			node := m.Rod(side, i)
			if node == nil {
				continue
			}
			m.specs[side][i] = core.NewRodSpec(table, side, i, node.Position().Z)
			m.found[side][i] = true
		}
	}
	return m
}

// BuildTable 构造标准球桌：8 根杆均匀分布在球场长度方向，静止时位于 z=0，球在中心
func BuildTable(table core.Table) *Model {
	g := NewGraph()
	for slot, rod := range rodLayout {
		x := (float64(slot) + 0.5) / float64(len(rodLayout)) * table.Height
		g.Add(NewNode(core.RodName(rod.side, rod.index), Vec3{X: x}))
	}
	x, z := table.BallToWorld(0.5, 0.5)
	g.Add(NewNode(BallNodeName, Vec3{X: x, Z: z}))
	return NewModel(table, g)
}

func (m *Model) Table() core.Table {
	return m.table
}

func (m *Model) Graph() *Graph {
	return m.graph
}

// Rod 查找杆节点，不存在时返回 nil
func (m *Model) Rod(side core.Side, index int) *Node {
	return m.graph.Find(core.RodName(side, index))
}

// Ball 查找球节点，不存在时返回 nil
func (m *Model) Ball() *Node {
	return m.graph.Find(BallNodeName)
}

// RodSpec 加载时记录的杆规格；杆不在模型中（或已移除）时返回 false
func (m *Model) RodSpec(side core.Side, index int) (core.RodSpec, bool) {
	if side < 0 || int(side) >= len(core.Sides) || index < 0 || index >= core.RodsPerSide {
		return core.RodSpec{}, false
	}
	if !m.found[side][index] || m.Rod(side, index) == nil {
		return core.RodSpec{}, false
	}
	return m.specs[side][index], true
}

// PlayerOffsets 杆上各球员相对杆中心的 z 偏移（绘制使用）
func PlayerOffsets(table core.Table, rod core.RodType) []float64 {
	n := rod.Segments()
	offsets := make([]float64, n)
	gap := table.Width / float64(n+1)
	for i := range offsets {
		offsets[i] = (float64(i)+1)*gap - table.Width/2
	}
	return offsets
}
