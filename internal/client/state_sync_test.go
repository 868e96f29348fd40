package client

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"foosball/internal/logger"
	"foosball/internal/scene"
	"foosball/pkg/core"
	"foosball/pkg/protocol"
)

type sentMove struct {
	pos, rot float64
}

// fakeLink 记录发送的命令，状态由测试控制
type fakeLink struct {
	mu         sync.Mutex
	state      ConnectionState
	selections []int
	moves      []sentMove
	opened     chan struct{}
	updates    chan protocol.StateUpdate
	subscribed bool
}

func newFakeLink(state ConnectionState) *fakeLink {
	l := &fakeLink{
		state:   state,
		opened:  make(chan struct{}),
		updates: make(chan protocol.StateUpdate, 4),
	}
	if state == StateOpen {
		close(l.opened)
	}
	return l
}

func (l *fakeLink) State() ConnectionState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *fakeLink) setState(s ConnectionState) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *fakeLink) SendSelection(index int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateOpen {
		l.selections = append(l.selections, index)
	}
}

func (l *fakeLink) SendMove(pos, rot float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateOpen {
		l.moves = append(l.moves, sentMove{pos, rot})
	}
}

func (l *fakeLink) Subscribe() <-chan protocol.StateUpdate {
	l.mu.Lock()
	l.subscribed = true
	l.mu.Unlock()
	return l.updates
}

func (l *fakeLink) Opened() <-chan struct{} {
	return l.opened
}

func (l *fakeLink) sent() ([]int, []sentMove) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.selections...), append([]sentMove(nil), l.moves...)
}

func newTestSync(t *testing.T, link LinkPort) (*StateSync, *scene.Model) {
	t.Helper()
	model := scene.BuildTable(core.DefaultTable())
	s := NewStateSync(link, SyncOptions{
		Side:   core.SideRed,
		Table:  core.DefaultTable(),
		Logger: logger.Discard(),
	})
	s.AttachModel(model)
	return s, model
}

func TestLocalFallbackIntegratesWithinTravel(t *testing.T) {
	link := newFakeLink(StateClosed)
	s, model := newTestSync(t, link)

	f := NewInputFusion(DefaultInputOptions())
	f.Keyboard().Press(ActionLeft)
	s.Tick(f.Sample(GamepadState{}))

	if z := model.Rod(core.SideRed, 0).Position().Z; z != -0.1 {
		t.Fatalf("rod z = %v, want -0.1", z)
	}
	if sel, moves := link.sent(); len(sel) != 0 || len(moves) != 0 {
		t.Fatalf("local mode sent messages: %v %v", sel, moves)
	}
	if s.Mode() != ModeLocalFallback {
		t.Fatalf("mode = %s", s.Mode())
	}
}

func TestLocalFallbackRejectsTravelButRotates(t *testing.T) {
	link := newFakeLink(StateClosed)
	s, model := newTestSync(t, link)
	rod := model.Rod(core.SideRed, 0)
	rod.SetZ(1.1)

	s.Tick(Frame{Command: core.InputCommand{DZ: 0.1, DRot: 0.5}})

	if z := rod.Position().Z; z != 1.1 {
		t.Fatalf("z = %v, move beyond half travel should be rejected", z)
	}
	if r := rod.RotationY(); r != 0.5 {
		t.Fatalf("rotation = %v, want 0.5", r)
	}
}

func TestRemoteModeSendsMoveFraction(t *testing.T) {
	link := newFakeLink(StateOpen)
	s, model := newTestSync(t, link)
	s.SetSelection(1)

	s.Tick(Frame{Command: core.InputCommand{DZ: 0.1}})

	selections, moves := link.sent()
	if len(selections) != 1 || selections[0] != 1 {
		t.Fatalf("selections = %v, want [1]", selections)
	}
	if len(moves) != 1 {
		t.Fatalf("moves = %v, want one", moves)
	}
	if math.Abs(moves[0].pos-0.1/2.4) > 1e-12 || moves[0].rot != 0 {
		t.Fatalf("move = %+v, want pos≈0.0417 rot=0", moves[0])
	}
	if z := model.Rod(core.SideRed, 1).Position().Z; z != 0 {
		t.Fatalf("remote mode wrote locally: z = %v", z)
	}
}

func TestRemoteModeSkipsTinyMoves(t *testing.T) {
	link := newFakeLink(StateOpen)
	s, _ := newTestSync(t, link)

	s.Tick(Frame{Command: core.InputCommand{DZ: 0.0005}})
	if _, moves := link.sent(); len(moves) != 0 {
		t.Fatalf("moves = %v, want none", moves)
	}
}

func TestModeFollowsLinkEveryTick(t *testing.T) {
	link := newFakeLink(StateOpen)
	s, model := newTestSync(t, link)
	cmd := Frame{Command: core.InputCommand{DZ: 0.1}}

	s.Tick(cmd)
	link.setState(StateClosed)
	s.Tick(cmd)

	if _, moves := link.sent(); len(moves) != 1 {
		t.Fatalf("moves = %d, want 1", len(moves))
	}
	if z := model.Rod(core.SideRed, 0).Position().Z; z != 0.1 {
		t.Fatalf("z = %v, want 0.1 after fallback", z)
	}
}

func TestInboundMidpointWritesZeroOffset(t *testing.T) {
	link := newFakeLink(StateOpen)
	s, model := newTestSync(t, link)
	for i := 0; i < core.RodsPerSide; i++ {
		model.Rod(core.SideRed, i).SetZ(0.7)
	}
	// 零点在绑定时已经记录为 0
	update := protocol.RestState()
	s.ApplyState(update)

	for i := 0; i < core.RodsPerSide; i++ {
		if z := model.Rod(core.SideRed, i).Position().Z; z != 0 {
			t.Fatalf("rod %d z = %v, want 0", i, z)
		}
	}
	ball := model.Ball().Position()
	if math.Abs(ball.X-core.TableHeight/2) > 1e-12 || ball.Z != 0 {
		t.Fatalf("ball = %+v", ball)
	}
}

func TestInboundRoundTripAndUnits(t *testing.T) {
	link := newFakeLink(StateOpen)
	s, model := newTestSync(t, link)

	update := protocol.RestState()
	update.RedPos[2] = 0.8
	update.BlueRot[3] = 90
	update.Ball = [2]float64{0, 1}
	s.ApplyState(update)

	rod := model.Rod(core.SideRed, 2)
	spec, _ := model.RodSpec(core.SideRed, 2)
	if got := spec.ZToFraction(rod.Position().Z); math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("round trip fraction = %v, want 0.8", got)
	}
	if r := model.Rod(core.SideBlue, 3).RotationY(); math.Abs(r-math.Pi/2) > 1e-12 {
		t.Fatalf("rotation = %v, want π/2", r)
	}
	ball := model.Ball().Position()
	if math.Abs(ball.X-core.TableHeight) > 1e-12 || math.Abs(ball.Z+core.TableWidth/2) > 1e-12 {
		t.Fatalf("ball = %+v", ball)
	}
}

func TestInboundIsIdempotent(t *testing.T) {
	link := newFakeLink(StateOpen)
	s, model := newTestSync(t, link)

	update := protocol.RestState()
	update.RedPos = [4]float64{0.1, 0.2, 0.9, 0.4}
	update.RedRot = [4]float64{10, 20, 30, 40}

	snapshot := func() []scene.Vec3 {
		var out []scene.Vec3
		for _, name := range model.Graph().Names() {
			n := model.Graph().Find(name)
			p := n.Position()
			p.Y = n.RotationY()
			out = append(out, p)
		}
		return out
	}

	s.ApplyState(update)
	once := snapshot()
	s.ApplyState(update)
	twice := snapshot()
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("node %d differs: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestInboundIgnoredInLocalMode(t *testing.T) {
	link := newFakeLink(StateClosed)
	s, model := newTestSync(t, link)
	update := protocol.RestState()
	update.RedPos[0] = 1
	s.ApplyState(update)

	if z := model.Rod(core.SideRed, 0).Position().Z; z != 0 {
		t.Fatalf("z = %v, local mode should own the scene", z)
	}
}

func TestUnresolvedRodIsSkipped(t *testing.T) {
	link := newFakeLink(StateClosed)
	s := NewStateSync(link, SyncOptions{Logger: logger.Discard()})

	// 模型未加载
	s.Tick(Frame{Command: core.InputCommand{DZ: 0.1, DRot: 0.1}})

	model := scene.BuildTable(core.DefaultTable())
	model.Graph().Remove(core.RodName(core.SideRed, 0))
	s.AttachModel(model)
	s.Tick(Frame{Command: core.InputCommand{DZ: 0.1}})

	link.setState(StateOpen)
	update := protocol.RestState()
	update.RedPos[1] = 1
	s.ApplyState(update)
	if z := model.Rod(core.SideRed, 1).Position().Z; math.Abs(z-0.6) > 1e-12 {
		t.Fatalf("resolved rod z = %v, want 0.6", z)
	}
}

func TestSelectionSaturates(t *testing.T) {
	link := newFakeLink(StateOpen)
	s, _ := newTestSync(t, link)
	s.SetSelection(3)

	s.Tick(Frame{SelectionDelta: 1})
	if got := s.Selection(); got != 3 {
		t.Fatalf("selection = %d, want 3", got)
	}
	selections, _ := link.sent()
	if len(selections) != 1 {
		t.Fatalf("saturated step should not resend: %v", selections)
	}

	s.SetSelection(-5)
	if got := s.Selection(); got != 0 {
		t.Fatalf("selection = %d, want 0", got)
	}
}

func TestLocalSelectionNotSent(t *testing.T) {
	link := newFakeLink(StateClosed)
	s, _ := newTestSync(t, link)
	s.Tick(Frame{SelectionDelta: 1})

	if s.Selection() != 1 {
		t.Fatalf("selection = %d", s.Selection())
	}
	if selections, _ := link.sent(); len(selections) != 0 {
		t.Fatalf("local mode sent selection: %v", selections)
	}
}

func TestStartAnnouncesAfterGrace(t *testing.T) {
	link := newFakeLink(StateOpen)
	model := scene.BuildTable(core.DefaultTable())
	s := NewStateSync(link, SyncOptions{GracePeriod: 20 * time.Millisecond, Logger: logger.Discard()})
	s.AttachModel(model)
	s.SetSelection(2)
	link.mu.Lock()
	link.selections = nil
	link.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	link.mu.Lock()
	early := link.subscribed
	link.mu.Unlock()
	if early {
		t.Fatal("subscribed before grace period")
	}

	update := protocol.RestState()
	update.RedPos[0] = 1
	link.updates <- update

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if model.Rod(core.SideRed, 0).Position().Z != 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if z := model.Rod(core.SideRed, 0).Position().Z; math.Abs(z-1.15) > 1e-12 {
		t.Fatalf("update not applied: z = %v", z)
	}
	selections, _ := link.sent()
	if len(selections) != 1 || selections[0] != 2 {
		t.Fatalf("announced selections = %v, want [2]", selections)
	}
	if !s.Status().Announced {
		t.Fatal("status not announced")
	}
}
