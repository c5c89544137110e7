//go:build !unix

package shell

import (
	"io"
	"os"
	"os/exec"
)

func isolate(_ *exec.Cmd, _ io.Reader) (restore func()) {
	return func() {}
}

func interruptedBySignal(_ *os.ProcessState) bool {
	return false
}
