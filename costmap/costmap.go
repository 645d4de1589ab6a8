// Package costmap provides the occupancy grid consulted by the local planner and its critics.
package costmap

// Cost values follow the usual 8-bit convention: 0 is free, higher is more expensive, and the
// top three values are reserved.
const (
	FreeSpace                 uint8 = 0
	InscribedInflatedObstacle uint8 = 253
	LethalObstacle            uint8 = 254
	NoInformation             uint8 = 255
)

// Info describes the geometry of a costmap.
type Info struct {
	Width      uint    `json:"width"`
	Height     uint    `json:"height"`
	Resolution float64 `json:"resolution"`
	FrameID    string  `json:"frame_id"`
	OriginX    float64 `json:"origin_x"`
	OriginY    float64 `json:"origin_y"`
}

// Costmap is a rectangular grid of cell costs anchored in a named frame. Calls are synchronous
// and may fail; callers should not retry internally.
type Costmap interface {
	// Update refreshes the grid from its sources before planning.
	Update() error
	Width() uint
	Height() uint
	Resolution() float64
	FrameID() string
	Info() Info

	// Cost returns the cost of cell (mx, my). Out of range cells report NoInformation.
	Cost(mx, my uint) uint8
	// WorldToMap converts a position in FrameID into cell coordinates. ok is false off the grid.
	WorldToMap(wx, wy float64) (mx, my uint, ok bool)
	// MapToWorld returns the position of the center of cell (mx, my).
	MapToWorld(mx, my uint) (wx, wy float64)
}
