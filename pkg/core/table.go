package core

import (
	"fmt"
	"math"
)

// Side 球桌的一方
type Side int

const (
	SideRed Side = iota
	SideBlue
)

// Sides 按协议顺序排列的双方
var Sides = [...]Side{SideRed, SideBlue}

func (s Side) String() string {
	switch s {
	case SideRed:
		return "red"
	case SideBlue:
		return "blue"
	}
	return "unknown"
}

// ParseSide 解析配置中的方名
func ParseSide(name string) (Side, error) {
	switch name {
	case "red", "":
		return SideRed, nil
	case "blue":
		return SideBlue, nil
	}
	return SideRed, fmt.Errorf("未知的球桌方: %q", name)
}

// RodType 杆类型（按球员数量区分），数值即协议中的数组下标
type RodType int

const (
	RodThreeBar RodType = iota
	RodFiveBar
	RodTwoBar
	RodGoalie
)

func (r RodType) String() string {
	switch r {
	case RodThreeBar:
		return "three-bar"
	case RodFiveBar:
		return "five-bar"
	case RodTwoBar:
		return "two-bar"
	case RodGoalie:
		return "goalie"
	}
	return "unknown"
}

// Segments 杆上的球员数量
func (r RodType) Segments() int {
	switch r {
	case RodThreeBar, RodGoalie:
		return 3
	case RodFiveBar:
		return 5
	case RodTwoBar:
		return 2
	}
	return 0
}

// RodSpec 杆的静态参数，加载后不可变
type RodSpec struct {
	Side        Side
	Index       int
	Segments    int
	TravelLimit float64 // 总行程，以零点为中心对称
	ZeroOffset  float64 // 静止位置的世界 z 坐标
}

// NewRodSpec 根据球桌参数创建杆规格
func NewRodSpec(table Table, side Side, index int, zeroOffset float64) RodSpec {
	return RodSpec{
		Side:        side,
		Index:       index,
		Segments:    RodType(index).Segments(),
		TravelLimit: table.Travel[index],
		ZeroOffset:  zeroOffset,
	}
}

// Accepts 候选位置是否在行程范围内，恰好等于半行程时拒绝
func (r RodSpec) Accepts(candidateZ float64) bool {
	return math.Abs(candidateZ-r.ZeroOffset) < r.TravelLimit/2
}

// FractionToZ 行程比例（0..1）转换为世界 z 坐标
func (r RodSpec) FractionToZ(p float64) float64 {
	return r.ZeroOffset + (p-0.5)*r.TravelLimit
}

// ZToFraction 世界 z 坐标转换为行程比例
func (r RodSpec) ZToFraction(z float64) float64 {
	return (z-r.ZeroOffset)/r.TravelLimit + 0.5
}

// DisplacementToFraction 线位移转换为全行程的比例（发送 move 使用）
func (r RodSpec) DisplacementToFraction(dz float64) float64 {
	return dz / (2 * r.TravelLimit)
}

// String 返回杆的节点名，例如 rod_red_0
func (r RodSpec) String() string {
	return RodName(r.Side, r.Index)
}

// RodName 场景中杆节点的名称
func RodName(side Side, index int) string {
	return fmt.Sprintf("rod_%s_%d", side, index)
}

// Table 球桌的物理常量
type Table struct {
	Width  float64 // 球场 z 方向宽度
	Height float64 // 球场 x 方向长度
	Travel [RodTypeCount]float64
}

// DefaultTable 默认球桌参数
func DefaultTable() Table {
	return Table{
		Width:  TableWidth,
		Height: TableHeight,
		Travel: DefaultTravelLimits,
	}
}

// BallToWorld 将球的两个归一化坐标映射到世界坐标 (x, z)
func (t Table) BallToWorld(firstAxis, secondAxis float64) (x, z float64) {
	x = secondAxis * t.Height
	z = (firstAxis - 0.5) * t.Width
	return x, z
}

// DegreesToRadians 角度转弧度
func DegreesToRadians(deg float64) float64 {
	return deg / 360 * 2 * math.Pi
}

// RadiansToDegrees 弧度转角度
func RadiansToDegrees(rad float64) float64 {
	return rad / (2 * math.Pi) * 360
}
