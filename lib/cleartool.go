package cc2svn

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"
)

// Tool is the boundary to the source system. Everything the conversion
// needs from ClearCase funnels through here, and tests stand in for it.
type Tool interface {
	// History writes the recursive event listing to outFile, newest
	// first. A non-empty branch restricts the listing to that branch.
	History(outFile, branch string) error
	// BranchExists probes whether any element carries the branch.
	BranchExists(branch string) bool
	// Fetch retrieves one element version into localFile.
	Fetch(localFile, element string) error
	// Describe returns the formatted event for one element version.
	Describe(element string) (string, error)
	// FindLabeled writes the version-extended names carrying the label
	// to outFile, one per line.
	FindLabeled(outFile, label string) error
	// CatConfigSpec writes the view's current config spec to outFile.
	CatConfigSpec(outFile string) error
	// SetConfigSpec points the view at the config spec in specFile.
	SetConfigSpec(specFile string) error
}

// Cleartool runs the real cleartool binary inside the vob directory. The
// command is configured as one string and may carry leading arguments
// ("ssh ccbox cleartool"); it is split shell-style once at startup.
//
// Invocations block until the command returns; there is no timeout.
type Cleartool struct {
	argv   []string
	vobDir string
	log    *logrus.Logger
}

func NewCleartool(command, vobDir string, log *logrus.Logger) (*Cleartool, error) {
	argv, err := shellquote.Split(command)
	if err != nil {
		return nil, fmt.Errorf("cleartool command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: cleartool", ErrMissingField)
	}
	return &Cleartool{argv: argv, vobDir: vobDir, log: log}, nil
}

// run executes one invocation with stdout directed at the given writer.
// A non-zero exit or anything on stderr counts as failure.
func (ct *Cleartool) run(stdout io.Writer, args ...string) error {
	argv := append(append([]string{}, ct.argv...), args...)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = ct.vobDir
	cmd.Stdout = stdout
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	ct.log.Debugf("exec: %s", shellquote.Join(argv...))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w\n%s", args[0], err, stderr.String())
	}
	if stderr.Len() > 0 {
		return fmt.Errorf("%s: command has non-empty error stream:\n%s", args[0], stderr.String())
	}
	return nil
}

// runToFile runs with stdout redirected to a file.
func (ct *Cleartool) runToFile(outFile string, args ...string) error {
	file, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if rerr := ct.run(file, args...); rerr != nil {
		file.Close()
		return rerr
	}
	return file.Close()
}

func (ct *Cleartool) History(outFile, branch string) error {
	args := []string{"lshistory", "-recurse", "-fmt", HistoryFormat}
	if branch != "" {
		args = append(args, "-branch", branch)
	}
	return ct.runToFile(outFile, args...)
}

// BranchExists runs the branch listing purely for its exit status;
// stderr chatter does not count against it.
func (ct *Cleartool) BranchExists(branch string) bool {
	argv := append(append([]string{}, ct.argv...), "lshistory", "-recurse", "-fmt", HistoryFormat, "-branch", branch)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = ct.vobDir
	return cmd.Run() == nil
}

func (ct *Cleartool) Fetch(localFile, element string) error {
	return ct.run(io.Discard, "get", "-to", localFile, element)
}

func (ct *Cleartool) Describe(element string) (string, error) {
	out := &bytes.Buffer{}
	if err := ct.run(out, "descr", "-fmt", HistoryFormat, element); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (ct *Cleartool) FindLabeled(outFile, label string) error {
	return ct.runToFile(outFile, "find", ".", "-ver", "version("+label+")", "-print")
}

func (ct *Cleartool) CatConfigSpec(outFile string) error {
	return ct.runToFile(outFile, "catcs")
}

func (ct *Cleartool) SetConfigSpec(specFile string) error {
	return ct.run(io.Discard, "setcs", specFile)
}
