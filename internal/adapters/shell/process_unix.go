//go:build unix

package shell

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// isolate starts the child in its own process group so cancellation reaches
// everything it spawns. When stdin is a terminal the group becomes the
// foreground job; the returned func hands the terminal back after Wait.
func isolate(cmd *exec.Cmd, stdin io.Reader) (restore func()) {
	fd, interactive := terminalFd(stdin)
	if interactive {
		cmd.SysProcAttr = &syscall.SysProcAttr{Foreground: true, Ctty: fd}
	} else {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}

	cmd.Cancel = func() error {
		return killGroup(cmd.Process)
	}

	if !interactive {
		return func() {}
	}
	return func() { reclaimTerminal(fd) }
}

func terminalFd(stdin io.Reader) (int, bool) {
	f, ok := stdin.(*os.File)
	if !ok || f == nil {
		return 0, false
	}
	fd := int(f.Fd()) //nolint:gosec // descriptors fit in int
	return fd, term.IsTerminal(fd)
}

// killGroup sends SIGKILL to the child's process group. The child is the
// group leader, so its pid is the group id.
func killGroup(p *os.Process) error {
	if p == nil {
		return os.ErrProcessDone
	}
	err := unix.Kill(-p.Pid, unix.SIGKILL)
	if errors.Is(err, unix.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}

// reclaimTerminal makes cargonode's group the foreground job again.
// tcsetpgrp from a background group raises SIGTTOU unless it is ignored.
func reclaimTerminal(fd int) {
	signal.Ignore(syscall.SIGTTOU)
	defer signal.Reset(syscall.SIGTTOU)
	_ = unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, unix.Getpgrp())
}

// interruptedBySignal reports whether the child died from a terminal interrupt.
// In the foreground the child's group receives ^C instead of cargonode.
func interruptedBySignal(state *os.ProcessState) bool {
	if state == nil {
		return false
	}
	ws, ok := state.Sys().(syscall.WaitStatus)
	return ok && ws.Signaled() && ws.Signal() == syscall.SIGINT
}
