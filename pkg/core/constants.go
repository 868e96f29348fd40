package core

import "math"

// 帧率（每次显示刷新调用一次 tick）
const (
	FPS            = 60
	FixedDeltaTime = 1.0 / FPS
)

// 球桌配置（世界坐标单位：分米，原始尺寸为厘米 / 10）
const (
	RodsPerSide  = 4           // 每一方的杆数，也是杆类型数
	RodTypeCount = RodsPerSide // 杆类型与协议数组下标一一对应
	TableWidth   = 6.8         // 球场 z 方向总宽（68cm）
	TableHeight  = 11.66       // 球场 x 方向总长（116.6cm）
)

// 各杆类型默认行程（世界单位），按 RodType 顺序
var DefaultTravelLimits = [RodTypeCount]float64{
	2.3, // 三人杆
	1.2, // 五人杆
	3.5, // 两人杆
	2.3, // 守门杆
}

// 输入配置
const (
	DefaultLinearSpeed     = 0.1      // 每 tick 线位移
	DefaultRotationSpeed   = 0.1      // 每 tick 转角（弧度）
	DefaultPrecisionFactor = 4.0      // 精细模式除数
	DefaultShotImpulse     = -math.Pi // 射门脉冲（弧度）
	DefaultAxisDeadzone    = 0.15     // 摇杆死区
)

// 零值判定阈值
const (
	LinearEpsilon   = 0.001 // |dz| 小于此值视为 0
	RotationEpsilon = 0.01  // |drot| 小于此值视为 0
	MoveEpsilon     = 0.001 // 远端模式下发送 move 的最小变化量
)
