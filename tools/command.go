// Package tools provides agent-side helpers for shelling out, touching
// the filesystem, calling HTTP endpoints and cleaning up LLM output.
// Every failure is a types.Error carrying the TOOL_FAILED code.
package tools

import (
	"bytes"
	"os/exec"

	"github.com/BaSui01/agentline/types"
)

// CmdOutput is the captured result of a shell command.
type CmdOutput struct {
	// Success reports whether the command exited with status 0.
	Success bool
	// Stdout is the captured standard output.
	Stdout string
	// Stderr is the captured standard error.
	Stderr string
}

// RunCmd runs a shell command through `sh -c` and captures its output.
// A non-zero exit is not an error; it is reported through Success so
// agents can react to failing commands without losing their output.
func RunCmd(cmdline string) (CmdOutput, error) {
	return runShell(cmdline, "")
}

// RunCmdInDir runs a shell command through `sh -c` with dir as the
// working directory.
func RunCmdInDir(dir, cmdline string) (CmdOutput, error) {
	return runShell(cmdline, dir)
}

func runShell(cmdline, dir string) (CmdOutput, error) {
	cmd := exec.Command("sh", "-c", cmdline)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := CmdOutput{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			// The command ran and exited non-zero.
			return out, nil
		}
		return out, types.WrapFailed("run command", err).WithCode(types.ErrToolFailed)
	}
	out.Success = true
	return out, nil
}
