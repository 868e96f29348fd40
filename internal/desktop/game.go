package desktop

import (
	"sync/atomic"

	"foosball/internal/client"
	"foosball/internal/scene"
	"foosball/pkg/core"

	"github.com/hajimehoshi/ebiten/v2"
)

// 窗口尺寸
const (
	ScreenWidth  = 760
	ScreenHeight = 540
)

// Game 控制器主结构（Ebiten 游戏循环），Update 即每帧的 tick
type Game struct {
	sync   *client.StateSync
	fusion *client.InputFusion
	side   core.Side
	table  core.Table

	keyboard *keyboardPump
	gamepad  gamepadSampler

	model   atomic.Pointer[scene.Model]
	loadErr atomic.Pointer[error]
}

// NewGame 创建控制器界面
func NewGame(sync *client.StateSync, fusion *client.InputFusion, keys KeyMap, side core.Side, table core.Table) *Game {
	return &Game{
		sync:     sync,
		fusion:   fusion,
		side:     side,
		table:    table,
		keyboard: newKeyboardPump(keys),
	}
}

// SetModel 加载回调：绑定场景并开始绘制
func (g *Game) SetModel(m *scene.Model) {
	g.sync.AttachModel(m)
	g.model.Store(m)
}

// SetLoadError 加载失败回调
func (g *Game) SetLoadError(err error) {
	g.loadErr.Store(&err)
}

// Update 读取输入并推进同步状态
func (g *Game) Update() error {
	if index := g.keyboard.pump(g.fusion.Keyboard()); index >= 0 {
		g.sync.SetSelection(index)
	}

	frame := g.fusion.Sample(g.gamepad.sample())
	g.sync.Tick(frame)
	return nil
}

// Draw 绘制俯视图和状态栏
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	status := g.sync.Status()
	if m := g.model.Load(); m != nil {
		g.drawTable(screen, m, status)
	}
	g.drawHUD(screen, status)
}

// Layout 设置屏幕布局
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}
