package client

import (
	"math"
	"testing"

	"foosball/pkg/core"
)

func TestButtonEdges(t *testing.T) {
	var b Button
	steps := []struct {
		pressed bool
		want    Edge
	}{
		{false, EdgeNone},
		{true, EdgePress},
		{true, EdgeNone},
		{true, EdgeNone},
		{false, EdgeRelease},
		{false, EdgeNone},
		{true, EdgePress},
	}
	for i, step := range steps {
		if got := b.Update(step.pressed); got != step.want {
			t.Fatalf("step %d: edge = %v, want %v", i, got, step.want)
		}
	}
}

func TestKeyboardLeftKey(t *testing.T) {
	f := NewInputFusion(DefaultInputOptions())
	f.Keyboard().Press(ActionLeft)

	frame := f.Sample(GamepadState{})
	if frame.Command.DZ != -0.1 || frame.Command.DRot != 0 {
		t.Fatalf("command = %+v, want dz=-0.1", frame.Command)
	}

	// 按住不松开，电平持续
	if frame = f.Sample(GamepadState{}); frame.Command.DZ != -0.1 {
		t.Fatalf("held key lost: %+v", frame.Command)
	}

	f.Keyboard().Release(ActionLeft)
	if frame = f.Sample(GamepadState{}); !frame.Command.IsZero() {
		t.Fatalf("released key still drives: %+v", frame.Command)
	}
}

func TestKeyboardOpposingKeysCancel(t *testing.T) {
	f := NewInputFusion(DefaultInputOptions())
	f.Keyboard().Press(ActionLeft)
	f.Keyboard().Press(ActionRight)
	f.Keyboard().Press(ActionRotateUp)

	frame := f.Sample(GamepadState{})
	if frame.Command.DZ != 0 || frame.Command.DRot != 0.1 {
		t.Fatalf("command = %+v", frame.Command)
	}
}

func TestKeyboardSelectionIsEdgeTriggered(t *testing.T) {
	f := NewInputFusion(DefaultInputOptions())
	kb := f.Keyboard()

	kb.Press(ActionSelectNext)
	if got := f.Sample(GamepadState{}).SelectionDelta; got != 1 {
		t.Fatalf("first frame delta = %d, want 1", got)
	}

	// 系统自动重复产生的按下事件不会再次触发
	kb.Press(ActionSelectNext)
	if got := f.Sample(GamepadState{}).SelectionDelta; got != 0 {
		t.Fatalf("held key repeated: delta = %d", got)
	}

	kb.Release(ActionSelectNext)
	kb.Press(ActionSelectPrev)
	if got := f.Sample(GamepadState{}).SelectionDelta; got != -1 {
		t.Fatalf("delta = %d, want -1", got)
	}
}

func TestKeyboardSlowModifier(t *testing.T) {
	f := NewInputFusion(DefaultInputOptions())
	f.Keyboard().Press(ActionRight)
	f.Keyboard().Press(ActionSlow)

	frame := f.Sample(GamepadState{})
	if math.Abs(frame.Command.DZ-0.025) > 1e-12 {
		t.Fatalf("dz = %v, want 0.025", frame.Command.DZ)
	}
}

func TestGamepadOverridesKeyboardAxes(t *testing.T) {
	f := NewInputFusion(DefaultInputOptions())
	f.Keyboard().Press(ActionLeft)

	pad := GamepadState{Name: "Xbox Controller", LinearAxis: 0.5, RotationAxis: -1}
	frame := f.Sample(pad)
	if math.Abs(frame.Command.DZ-0.05) > 1e-12 || math.Abs(frame.Command.DRot+0.1) > 1e-12 {
		t.Fatalf("command = %+v, want controller axes only", frame.Command)
	}

	// 手柄存在但摇杆居中时键盘也不参与
	if frame = f.Sample(GamepadState{Name: "Xbox Controller"}); !frame.Command.IsZero() {
		t.Fatalf("keyboard leaked through: %+v", frame.Command)
	}
}

func TestGamepadDeadzoneAndPrecision(t *testing.T) {
	f := NewInputFusion(DefaultInputOptions())

	frame := f.Sample(GamepadState{Name: "pad", LinearAxis: 0.14, RotationAxis: -0.1})
	if !frame.Command.IsZero() {
		t.Fatalf("deadzone leaked: %+v", frame.Command)
	}

	frame = f.Sample(GamepadState{Name: "pad", LinearAxis: 1, RotationAxis: 1, Precision: true})
	if math.Abs(frame.Command.DZ-0.025) > 1e-12 || math.Abs(frame.Command.DRot-0.025) > 1e-12 {
		t.Fatalf("precision command = %+v", frame.Command)
	}
}

func TestRotationEpsilonSnapsToZero(t *testing.T) {
	f := NewInputFusion(DefaultInputOptions())

	// 0.3 * 0.1 / 4 = 0.0075 < 0.01
	frame := f.Sample(GamepadState{Name: "pad", RotationAxis: 0.3, Precision: true})
	if frame.Command.DRot != 0 {
		t.Fatalf("drot = %v, want exactly 0", frame.Command.DRot)
	}
}

func TestGamepadSelectionEdges(t *testing.T) {
	f := NewInputFusion(DefaultInputOptions())

	if got := f.Sample(GamepadState{Name: "pad", SelectNext: true}).SelectionDelta; got != 1 {
		t.Fatalf("face button delta = %d", got)
	}
	if got := f.Sample(GamepadState{Name: "pad", SelectNext: true}).SelectionDelta; got != 0 {
		t.Fatalf("held face button repeated: %d", got)
	}
	if got := f.Sample(GamepadState{Name: "pad", DPadUp: true}).SelectionDelta; got != -1 {
		t.Fatalf("dpad delta = %d", got)
	}
}

func TestShotPulseFiresOncePerPress(t *testing.T) {
	opts := DefaultInputOptions()
	f := NewInputFusion(opts)

	frame := f.Sample(GamepadState{Name: "pad", Trigger: true})
	if !frame.Shot || frame.Command.DRot != core.DefaultShotImpulse {
		t.Fatalf("first press = %+v", frame)
	}
	frame = f.Sample(GamepadState{Name: "pad", Trigger: true})
	if frame.Shot || frame.Command.DRot != 0 {
		t.Fatalf("held trigger repeated: %+v", frame)
	}
	f.Sample(GamepadState{Name: "pad"})
	if frame = f.Sample(GamepadState{Name: "pad", Trigger: true}); !frame.Shot {
		t.Fatal("second press did not fire")
	}
}

func TestShotImpulseConfigurable(t *testing.T) {
	opts := DefaultInputOptions()
	opts.ShotImpulse = 2
	f := NewInputFusion(opts)
	f.Keyboard().Press(ActionShot)

	frame := f.Sample(GamepadState{})
	if !frame.Shot || frame.Command.DRot != 2 {
		t.Fatalf("frame = %+v", frame)
	}
}

func TestGamepadDisconnectResetsEdges(t *testing.T) {
	f := NewInputFusion(DefaultInputOptions())
	f.Sample(GamepadState{Name: "pad", Trigger: true})
	f.Sample(GamepadState{})

	// 重新连接时扳机仍按着，视为新的按下
	if frame := f.Sample(GamepadState{Name: "pad", Trigger: true}); !frame.Shot {
		t.Fatal("expected shot after reconnect")
	}
}
