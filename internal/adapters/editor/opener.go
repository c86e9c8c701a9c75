package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// fallbacks are tried in order when neither the configured command nor
// $VISUAL / $EDITOR is set
var fallbacks = []string{"nvim", "vim", "vi", "nano"}

// Opener implements ports.EditorOpener
type Opener struct {
	command string
	getenv  func(string) string
	look    func(string) (string, error)
}

// NewOpener creates an opener. command overrides the environment when not
// empty and may carry arguments, e.g. "code --wait".
func NewOpener(command string) *Opener {
	return &Opener{command: command, getenv: os.Getenv, look: exec.LookPath}
}

// OpenFile opens a file in the user's preferred editor and waits for it
func (o *Opener) OpenFile(path string) error {
	cmd, err := o.Command(path)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// Command returns an exec.Cmd for opening a file in the editor, for use with
// bubbletea's ExecProcess
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	argv := o.argv()
	if len(argv) == 0 {
		return nil, fmt.Errorf("no editor found: set $EDITOR environment variable")
	}

	cmd := exec.Command(argv[0], append(argv[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

// argv returns the editor program and its arguments
func (o *Opener) argv() []string {
	for _, candidate := range []string{o.command, o.getenv("VISUAL"), o.getenv("EDITOR")} {
		if fields := strings.Fields(candidate); len(fields) > 0 {
			return fields
		}
	}
	for _, editor := range fallbacks {
		if path, err := o.look(editor); err == nil {
			return []string{path}
		}
	}
	return nil
}
