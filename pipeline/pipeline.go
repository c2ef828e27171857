// Package pipeline runs the external bioinformatics tools of the
// analysis pipeline. Every stage follows the same shape: render a
// command (and possibly a control file) from a template, run the binary
// in a working directory, capture its output and check the expected
// result files. One parameterized abstraction replaces the per-stage
// driver scripts.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/op/go-logging"
)

// log is the global logging variable.
var log = logging.MustGetLogger("pipeline")

// Tool describes one external binary invocation template. Argument
// placeholders of the form {name} are substituted per invocation.
type Tool struct {
	// Name identifies the stage in logs and status records.
	Name string
	// Binary is the executable name or path.
	Binary string
	// Args is the argument template.
	Args []string
	// Outputs lists result files (relative to the working
	// directory, after placeholder substitution) that must exist
	// after a successful run.
	Outputs []string
}

func substitute(s string, vars map[string]string) string {
	for k, v := range vars {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}

// Render substitutes placeholders into the argument template.
func (t *Tool) Render(vars map[string]string) []string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = substitute(a, vars)
	}
	return args
}

// Run executes the tool in dir with the given variables, streaming
// combined output to out. The error reports the stage name and exit
// status; a failed invocation never affects sibling invocations.
func (t *Tool) Run(ctx context.Context, dir string, vars map[string]string, out io.Writer) error {
	args := t.Render(vars)
	log.Infof("%s: running %s %s", t.Name, t.Binary, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, t.Binary, args...)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %v", t.Name, err)
	}

	for _, output := range t.Outputs {
		fn := filepath.Join(dir, substitute(output, vars))
		if _, err := os.Stat(fn); err != nil {
			return fmt.Errorf("%s: expected output %s missing", t.Name, fn)
		}
	}
	return nil
}

// WriteControl renders a control-file template (codeml-style .ctl and
// the like) into path. The template uses text/template syntax with
// vars as data.
func WriteControl(path, tmpl string, vars map[string]string) error {
	t, err := template.New(filepath.Base(path)).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.Execute(f, vars); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// CopyFile copies one input file into a stage working directory.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
