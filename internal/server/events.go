package server

// EventKind 客户端命令类型
type EventKind int

const (
	EventUnknown EventKind = iota
	EventSelection
	EventMove
)

func (k EventKind) String() string {
	switch k {
	case EventSelection:
		return "selection"
	case EventMove:
		return "move"
	}
	return "unknown"
}

// MoveEvent 选中杆的位移（全行程比例）和转角增量（弧度）
type MoveEvent struct {
	Pos float64
	Rot float64
}

// TableEvent 从连接解码出的命令，SessionID 由连接填写
type TableEvent struct {
	Kind      EventKind
	SessionID int32
	Selection int
	Move      *MoveEvent
}
