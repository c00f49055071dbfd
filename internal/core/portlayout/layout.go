// Package portlayout contains the pure port-block arithmetic shared by the
// allocator, the lifecycle manager, and the reconciler. No I/O, only pure
// functions over port numbers.
package portlayout

// Floor is the lowest base port ever handed out.
const Floor = 4200

// BlockSize is the number of contiguous ports assigned wholesale to one
// project.
const BlockSize = 100

// MaxBlocks bounds how many projects can hold allocations on one machine.
const MaxBlocks = 50

// Fixed offsets from a project's base port. These are a static contract with
// the dashboard and bridge processes, not separately persisted.
const (
	OffsetDashboard = 0
	OffsetArchitect = 1

	BuilderOffsetLo = 10
	BuilderOffsetHi = 29

	UtilOffsetLo = 30
	UtilOffsetHi = 39

	AnnotationOffsetLo = 40
	AnnotationOffsetHi = 49
)

// ValidBase reports whether base is a legal base port: at or above the floor
// and aligned to the block size.
func ValidBase(base int) bool {
	return base >= Floor && (base-Floor)%BlockSize == 0
}

// NextBase computes the base port for a new project given the bases already
// allocated. Bases are assigned monotonically upward from the floor. The
// second return is false when the machine is out of blocks.
func NextBase(existing []int) (int, bool) {
	next := Floor
	for _, b := range existing {
		if b+BlockSize > next {
			next = b + BlockSize
		}
	}
	if next >= Floor+MaxBlocks*BlockSize {
		return 0, false
	}
	return next, true
}

// Layout exposes the concrete ports of one project's block.
type Layout struct {
	Base int
}

// Dashboard returns the dashboard port.
func (l Layout) Dashboard() int { return l.Base + OffsetDashboard }

// Architect returns the architect's bridge port.
func (l Layout) Architect() int { return l.Base + OffsetArchitect }

// BuilderPorts returns the builder port range in ascending order.
func (l Layout) BuilderPorts() []int {
	return l.portRange(BuilderOffsetLo, BuilderOffsetHi)
}

// UtilPorts returns the utility-terminal port range in ascending order.
func (l Layout) UtilPorts() []int {
	return l.portRange(UtilOffsetLo, UtilOffsetHi)
}

// AnnotationPorts returns the annotation-viewer port range in ascending order.
func (l Layout) AnnotationPorts() []int {
	return l.portRange(AnnotationOffsetLo, AnnotationOffsetHi)
}

// Contains reports whether port falls anywhere inside this project's block.
func (l Layout) Contains(port int) bool {
	return port >= l.Base && port < l.Base+BlockSize
}

func (l Layout) portRange(lo, hi int) []int {
	ports := make([]int, 0, hi-lo+1)
	for off := lo; off <= hi; off++ {
		ports = append(ports, l.Base+off)
	}
	return ports
}
