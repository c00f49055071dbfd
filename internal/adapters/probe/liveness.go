// Package probe implements the OS liveness probe.
package probe

import (
	"fmt"
	"net"
	"os"
	"syscall"

	"github.com/example/af/internal/ports/secondary"
)

// Liveness implements secondary.LivenessProbe with direct OS calls.
type Liveness struct{}

// NewLiveness creates a new liveness probe.
func NewLiveness() *Liveness {
	return &Liveness{}
}

// PidAlive reports whether a process with this pid exists. Signal 0 performs
// the existence check without delivering anything; EPERM still means the
// process is there.
func (l *Liveness) PidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return err == syscall.EPERM
}

// PathExists reports whether the path exists on disk.
func (l *Liveness) PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// PortFree reports whether the port can be bound on localhost. The listener
// is closed immediately; the caller races with other processes either way, so
// a positive answer is advisory.
func (l *Liveness) PortFree(port int) bool {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

var _ secondary.LivenessProbe = (*Liveness)(nil)
