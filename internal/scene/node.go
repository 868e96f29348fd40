package scene

import (
	"sort"
	"sync"
)

// Vec3 世界坐标（单位：分米）
type Vec3 struct {
	X, Y, Z float64
}

// Node 场景中的具名节点，位置和绕 Y 轴的转角可以被多个协程读写
type Node struct {
	name string

	mu        sync.RWMutex
	position  Vec3
	rotationY float64
}

func NewNode(name string, position Vec3) *Node {
	return &Node{name: name, position: position}
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) Position() Vec3 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.position
}

func (n *Node) SetPosition(p Vec3) {
	n.mu.Lock()
	n.position = p
	n.mu.Unlock()
}

// SetZ 只修改 z 分量（杆沿 z 轴平移）
func (n *Node) SetZ(z float64) {
	n.mu.Lock()
	n.position.Z = z
	n.mu.Unlock()
}

// SetXZ 修改水平面坐标，保留高度
func (n *Node) SetXZ(x, z float64) {
	n.mu.Lock()
	n.position.X = x
	n.position.Z = z
	n.mu.Unlock()
}

func (n *Node) RotationY() float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.rotationY
}

func (n *Node) SetRotationY(rad float64) {
	n.mu.Lock()
	n.rotationY = rad
	n.mu.Unlock()
}

// Graph 按名称索引的节点集合
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
}

func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// Add 加入节点，同名节点会被替换
func (g *Graph) Add(n *Node) {
	g.mu.Lock()
	g.nodes[n.Name()] = n
	g.mu.Unlock()
}

// Remove 删除节点
func (g *Graph) Remove(name string) {
	g.mu.Lock()
	delete(g.nodes, name)
	g.mu.Unlock()
}

// Find 查找节点，不存在时返回 nil
func (g *Graph) Find(name string) *Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes[name]
}

// Names 返回排序后的节点名
func (g *Graph) Names() []string {
	g.mu.RLock()
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	g.mu.RUnlock()
	sort.Strings(names)
	return names
}
