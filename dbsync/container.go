package dbsync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner executes an external command.
type Runner interface {
	Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner. Stderr output is folded into the returned error.
func (ExecRunner) Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Container is a running container that has the MySQL client tools installed.
type Container struct {
	Runtime string
	Name    string
	Runner  Runner
}

// NewContainer returns a Container driven through the docker CLI.
func NewContainer(name string) *Container {
	return &Container{Runtime: "docker", Name: name, Runner: ExecRunner{}}
}

// Exec runs args inside the container. When stdin is non-nil the session is
// kept interactive so the input reaches the command.
func (c *Container) Exec(ctx context.Context, stdin io.Reader, stdout io.Writer, args ...string) error {
	argv := []string{"exec"}
	if stdin != nil {
		argv = append(argv, "-i")
	}
	argv = append(argv, c.Name)
	argv = append(argv, args...)
	return c.Runner.Run(ctx, c.Runtime, argv, stdin, stdout)
}

// LocalDB is the database served inside the container.
type LocalDB struct {
	User     string
	Password string
	Database string
}

// DumpArgs builds a data-only mysqldump invocation. Schema is expected to be
// created on the remote side by the application's own migrations, whose
// bookkeeping tables are passed in ignore.
func DumpArgs(local LocalDB, ignore []string) []string {
	args := []string{
		"mysqldump",
		"-u", local.User,
		"-p" + local.Password,
		"--no-create-info",
		"--complete-insert",
		"--skip-triggers",
	}
	for _, table := range ignore {
		args = append(args, "--ignore-table="+local.Database+"."+table)
	}
	return append(args, local.Database)
}

// ClientArgs builds the mysql client connection arguments for t.
func ClientArgs(t *Target) []string {
	return []string{
		"-h", t.Host,
		"-P", fmt.Sprint(t.Port),
		"-u", t.User,
		"-p" + t.Password,
		"-D", t.Database,
	}
}

// LocalClientArgs builds the mysql client connection arguments for the
// database inside the container.
func LocalClientArgs(local LocalDB) []string {
	return []string{
		"-u", local.User,
		"-p" + local.Password,
		"-D", local.Database,
	}
}

// ImportArgs builds the mysql client invocation that loads a dump into t.
func ImportArgs(t *Target) []string {
	return append([]string{"mysql"}, ClientArgs(t)...)
}
