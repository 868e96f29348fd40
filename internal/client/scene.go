package client

import (
	"foosball/internal/scene"
	"foosball/pkg/core"
	"foosball/pkg/protocol"
)

// sceneBinding 模型加载后解析出的杆和球节点，未解析的节点为 nil
type sceneBinding struct {
	table core.Table
	rods  [len(core.Sides)][core.RodsPerSide]*scene.Node
	specs [len(core.Sides)][core.RodsPerSide]core.RodSpec
	ball  *scene.Node
}

// bindScene 解析节点并以加载时的 z 坐标作为各杆零点
func bindScene(model *scene.Model) *sceneBinding {
	b := &sceneBinding{table: model.Table(), ball: model.Ball()}
	for _, side := range core.Sides {
		for i := 0; i < core.RodsPerSide; i++ {
			spec, ok := model.RodSpec(side, i)
			if !ok {
				continue
			}
			b.rods[side][i] = model.Rod(side, i)
			b.specs[side][i] = spec
		}
	}
	return b
}

// rod 返回节点和规格，未解析时 node 为 nil
func (b *sceneBinding) rod(side core.Side, index int) (*scene.Node, core.RodSpec) {
	if b == nil || index < 0 || index >= core.RodsPerSide {
		return nil, core.RodSpec{}
	}
	return b.rods[side][index], b.specs[side][index]
}

// integrate 本地模拟：平移超出行程时拒绝，转动总是生效
func (b *sceneBinding) integrate(side core.Side, index int, cmd core.InputCommand) bool {
	node, spec := b.rod(side, index)
	if node == nil {
		return false
	}
	if cmd.DZ != 0 {
		candidate := node.Position().Z + cmd.DZ
		if spec.Accepts(candidate) {
			node.SetZ(candidate)
		}
	}
	if cmd.DRot != 0 {
		node.SetRotationY(node.RotationY() + cmd.DRot)
	}
	return true
}

// apply 把远端快照写入场景
func (b *sceneBinding) apply(update *protocol.StateUpdate) {
	if b == nil {
		return
	}
	for _, side := range core.Sides {
		positions := update.Positions(side)
		rotations := update.Rotations(side)
		for i := 0; i < core.RodsPerSide; i++ {
			node, spec := b.rod(side, i)
			if node == nil {
				continue
			}
			node.SetZ(spec.FractionToZ(positions[i]))
			node.SetRotationY(core.DegreesToRadians(rotations[i]))
		}
	}
	if b.ball != nil {
		x, z := b.table.BallToWorld(update.Ball[0], update.Ball[1])
		b.ball.SetXZ(x, z)
	}
}
