package protocol

import "foosball/pkg/core"

// ========== StateUpdate 与 core 之间的转换 ==========

// Positions 返回指定方的杆行程比例
func (s *StateUpdate) Positions(side core.Side) [core.RodsPerSide]float64 {
	if side == core.SideBlue {
		return s.BluePos
	}
	return s.RedPos
}

// Rotations 返回指定方的杆转角（度）
func (s *StateUpdate) Rotations(side core.Side) [core.RodsPerSide]float64 {
	if side == core.SideBlue {
		return s.BlueRot
	}
	return s.RedRot
}

// SetRod 写入指定杆的行程比例和转角（度）
func (s *StateUpdate) SetRod(side core.Side, index int, pos, rotDegrees float64) {
	if index < 0 || index >= core.RodsPerSide {
		return
	}
	if side == core.SideBlue {
		s.BluePos[index] = pos
		s.BlueRot[index] = rotDegrees
		return
	}
	s.RedPos[index] = pos
	s.RedRot[index] = rotDegrees
}

// RestState 所有杆位于行程中点、转角为 0，球在球场中心
func RestState() StateUpdate {
	var s StateUpdate
	for i := 0; i < core.RodsPerSide; i++ {
		s.RedPos[i] = 0.5
		s.BluePos[i] = 0.5
	}
	s.Ball = [2]float64{0.5, 0.5}
	return s
}
