package desktop

import (
	"fmt"
	"image/color"
	"math"

	"foosball/internal/client"
	"foosball/internal/scene"
	"foosball/pkg/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

var hudFont = text.NewGoXFace(basicfont.Face7x13)

// 俯视图布局（像素）
const (
	fieldMargin = 30
	fieldScale  = 60 // 每分米像素数
	hudTop      = fieldMargin*2 + 408
	playerSize  = 8
)

var (
	backgroundColor = color.RGBA{18, 22, 30, 255}
	fieldColor      = color.RGBA{30, 110, 60, 255}
	rodColor        = color.RGBA{170, 170, 180, 255}
	selectedColor   = color.RGBA{255, 220, 120, 255}
	ballColor       = color.RGBA{250, 250, 250, 255}
	hudColor        = color.RGBA{210, 220, 230, 255}
	dimColor        = color.RGBA{140, 150, 160, 255}
)

var sideColors = [...]color.RGBA{
	core.SideRed:  {220, 70, 70, 255},
	core.SideBlue: {70, 120, 230, 255},
}

// toScreen 世界坐标 (x, z) 转换为屏幕坐标
func (g *Game) toScreen(x, z float64) (float32, float32) {
	sx := fieldMargin + x*fieldScale
	sy := fieldMargin + (z+g.table.Width/2)*fieldScale
	return float32(sx), float32(sy)
}

func (g *Game) drawTable(screen *ebiten.Image, m *scene.Model, status client.Status) {
	fx, fy := g.toScreen(0, -g.table.Width/2)
	vector.DrawFilledRect(screen, fx, fy,
		float32(g.table.Height*fieldScale), float32(g.table.Width*fieldScale), fieldColor, false)

	for _, side := range core.Sides {
		for i := 0; i < core.RodsPerSide; i++ {
			node := m.Rod(side, i)
			if node == nil {
				continue
			}
			selected := side == g.side && i == status.Selection
			g.drawRod(screen, node, side, core.RodType(i), selected)
		}
	}

	if ball := m.Ball(); ball != nil {
		p := ball.Position()
		bx, by := g.toScreen(p.X, p.Z)
		vector.DrawFilledCircle(screen, bx, by, 6, ballColor, true)
	}
}

// drawRod 杆画成竖线，球员画成方块，短线表示转角
func (g *Game) drawRod(screen *ebiten.Image, node *scene.Node, side core.Side, rod core.RodType, selected bool) {
	p := node.Position()
	rot := node.RotationY()

	top := -g.table.Width / 2
	x0, y0 := g.toScreen(p.X, top)
	x1, y1 := g.toScreen(p.X, -top)
	clr := rodColor
	width := float32(2)
	if selected {
		clr = selectedColor
		width = 3
	}
	vector.StrokeLine(screen, x0, y0, x1, y1, width, clr, true)

	for _, offset := range scene.PlayerOffsets(g.table, rod) {
		cx, cy := g.toScreen(p.X, p.Z+offset)
		vector.DrawFilledRect(screen, cx-playerSize/2, cy-playerSize/2, playerSize, playerSize, sideColors[side], false)
		dx := float32(math.Sin(rot)) * playerSize * 2
		vector.StrokeLine(screen, cx, cy, cx+dx, cy, 2, sideColors[side], true)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image, status client.Status) {
	y := hudTop
	drawText(screen, fieldMargin, y, fmt.Sprintf("Link: %s   Mode: %s   Side: %s", status.Link, status.Mode, g.side), hudColor)
	y += 18
	drawText(screen, fieldMargin, y, fmt.Sprintf("Rod: [%d] %s", status.Selection+1, status.Rod), hudColor)

	cmd := status.LastFrame.Command
	line := fmt.Sprintf("dz %+.3f  drot %+.3f", cmd.DZ, cmd.DRot)
	if status.LastFrame.Shot {
		line += "  SHOT"
	}
	drawText(screen, fieldMargin+240, y, line, dimColor)

	y += 18
	switch {
	case g.loadErr.Load() != nil:
		drawText(screen, fieldMargin, y, fmt.Sprintf("Model: %v", *g.loadErr.Load()), color.RGBA{255, 120, 120, 255})
	case !status.ModelOK:
		drawText(screen, fieldMargin, y, "Model: loading...", dimColor)
	default:
		drawText(screen, fieldMargin, y, "1-4: Select rod   Arrows: Move/Select   W/S: Rotate   Shift: Slow   Space: Shot", dimColor)
	}
}

func drawText(screen *ebiten.Image, x, y int, msg string, clr color.Color) {
	options := &text.DrawOptions{}
	options.GeoM.Translate(float64(x), float64(y))
	options.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, msg, hudFont, options)
}
