package schedule

import (
	"fmt"
	"strings"
)

// ConnState is the open/shut state of a well connection.
type ConnState int

const (
	ConnOpen ConnState = iota + 1
	ConnShut
)

func (s ConnState) String() string {
	if s == ConnOpen {
		return "OPEN"
	}
	return "SHUT"
}

// ParseConnState maps OPEN/SHUT to a ConnState.
func ParseConnState(s string) (ConnState, error) {
	switch strings.ToUpper(s) {
	case "", "OPEN":
		return ConnOpen, nil
	case "SHUT":
		return ConnShut, nil
	default:
		return 0, fmt.Errorf("unknown connection state %q; valid: OPEN, SHUT", s)
	}
}

// Direction is the penetration direction of a connection.
type Direction int

const (
	DirX Direction = iota + 1
	DirY
	DirZ
)

func (d Direction) String() string {
	switch d {
	case DirX:
		return "X"
	case DirY:
		return "Y"
	default:
		return "Z"
	}
}

// ParseDirection maps X/Y/Z to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(s) {
	case "X":
		return DirX, nil
	case "Y":
		return DirY, nil
	case "", "Z":
		return DirZ, nil
	default:
		return 0, fmt.Errorf("unknown connection direction %q; valid: X, Y, Z", s)
	}
}

// Connection is one completed grid cell of a well. I, J, K are 0-based cell
// coordinates. All physical values are SI.
type Connection struct {
	I, J, K      int
	State        ConnState
	Dir          Direction
	CF           float64 // transmissibility factor
	Kh           float64
	Diameter     float64
	Depth        float64
	SkinFactor   float64
	ComplNum     int
	Segment      int // 0 when the well is not multi-segment
	SegDistStart float64
	SegDistEnd   float64
}

// IsOpen reports whether the connection flows.
func (c Connection) IsOpen() bool { return c.State == ConnOpen }
