package secondary

// LivenessProbe is the secondary port for the three OS primitives the
// allocator and reconciler need. All probes are synchronous, bounded, and
// side-effect-free on failure.
type LivenessProbe interface {
	// PidAlive reports whether a process with this pid exists.
	PidAlive(pid int) bool

	// PathExists reports whether the path exists on disk.
	PathExists(path string) bool

	// PortFree reports whether the port can actually be bound on
	// localhost. A failed bind means "port busy", not an error.
	PortFree(port int) bool
}
