package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittodrive/internal/cli/output"
	"github.com/marmos91/dittodrive/internal/cli/prompt"
	"github.com/marmos91/dittodrive/pkg/accounts"
	"github.com/marmos91/dittodrive/pkg/drive"
	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
	"github.com/marmos91/dittodrive/pkg/drive/service"
	"github.com/marmos91/dittodrive/pkg/drive/store/memory"
)

// testPasswords are the accounts of the test drive.
var testPasswords = map[string]string{
	"root":  "root-secret",
	"alice": "alice-secret",
	"bob":   "bob-secret",
}

func newTestAccounts(t *testing.T) *accounts.GORMStore {
	t.Helper()
	accts, err := accounts.New(&accounts.Config{
		Type:   accounts.DatabaseTypeSQLite,
		SQLite: accounts.SQLiteConfig{Path: filepath.Join(t.TempDir(), "accounts.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = accts.Close() })

	umasks := map[string]string{"root": "rwx:rwx", "alice": "rwx:r-x", "bob": "rwx:---"}
	for username, umask := range umasks {
		hash, err := accounts.HashPassword(testPasswords[username])
		require.NoError(t, err)
		_, err = accts.CreateUser(context.Background(), &accounts.User{
			Username:     username,
			PasswordHash: hash,
			Umask:        umask,
			Home:         "/",
		})
		require.NoError(t, err)
	}
	return accts
}

// typed answers every password prompt with password.
func typed(password string) func(string) (string, error) {
	return func(string) (string, error) { return password, nil }
}

func newTestShell(t *testing.T, format output.Format) (*shell, *bytes.Buffer) {
	t.Helper()
	accts := newTestAccounts(t)
	svc, err := service.New(context.Background(), accts, memory.New(), service.Config{RootUser: "root"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	var buf bytes.Buffer
	sh := &shell{
		s:    newSession(svc, "alice", output.NewPrinter(&buf, format, false)),
		auth: &authenticator{accts: accts, password: typed("")},
	}
	return sh, &buf
}

// run executes lines in order and fails the test on the first error.
func run(t *testing.T, sh *shell, lines ...string) {
	t.Helper()
	for _, line := range lines {
		quit, err := sh.exec(context.Background(), line)
		require.NoError(t, err, line)
		require.False(t, quit, line)
	}
}

func TestSessionResolve(t *testing.T) {
	s := &session{cwd: "/"}
	assert.Equal(t, "/", s.resolve(""))
	assert.Equal(t, "/docs", s.resolve("docs"))
	assert.Equal(t, "/a/../b", s.resolve("/a/../b"))

	s.cwd = "/docs"
	assert.Equal(t, "/docs/a.txt", s.resolve("a.txt"))
	assert.Equal(t, "/docs/../x", s.resolve("../x"))
	assert.Equal(t, "/docs", s.resolve(""))
}

func TestShellSession(t *testing.T) {
	sh, buf := newTestShell(t, output.FormatTable)

	run(t, sh, "mkdir /docs", "cd docs", `write notes.txt "hello   world"`)
	assert.Equal(t, "/docs", sh.s.cwd)
	assert.Contains(t, buf.String(), "Created directory /docs")

	buf.Reset()
	run(t, sh, "cat notes.txt")
	assert.Equal(t, "hello   world\n", buf.String())

	buf.Reset()
	run(t, sh, "ls -1")
	assert.Equal(t, ".\n..\nnotes.txt\n", buf.String())

	buf.Reset()
	run(t, sh, "pwd", "whoami")
	assert.Equal(t, "/docs\nalice\n", buf.String())

	t.Run("cd into a file fails", func(t *testing.T) {
		_, err := sh.exec(context.Background(), "cd notes.txt")
		assert.Error(t, err)
		assert.Equal(t, "/docs", sh.s.cwd)
	})

	t.Run("cd lets the drive resolve dot components", func(t *testing.T) {
		run(t, sh, "cd /docs/../docs/.")
		assert.Equal(t, "/docs", sh.s.cwd)
		run(t, sh, "cd ..")
		assert.Equal(t, "/", sh.s.cwd)
		run(t, sh, "cd docs")
	})

	t.Run("cd requires execute on the target", func(t *testing.T) {
		run(t, sh, "mkdir /locked", "chmod rw-:r-- /locked")
		_, err := sh.exec(context.Background(), "cd /locked")
		assert.True(t, driveerrors.IsInsufficientPermissions(err))
		assert.Equal(t, "/docs", sh.s.cwd)
	})

	t.Run("cd without argument returns to the root", func(t *testing.T) {
		run(t, sh, "cd")
		assert.Equal(t, "/", sh.s.cwd)
		run(t, sh, "cd /docs")
	})
}

func TestShellSu(t *testing.T) {
	sh, buf := newTestShell(t, output.FormatTable)
	ctx := context.Background()

	run(t, sh, "mkdir /private", "chmod rwx:--- /private")

	sh.auth.password = typed(testPasswords["bob"])
	run(t, sh, "su bob")
	assert.Equal(t, "bob@dittodrive:/$ ", sh.prompt())

	_, err := sh.exec(ctx, "ls /private")
	assert.True(t, driveerrors.IsInsufficientPermissions(err))

	t.Run("unknown user", func(t *testing.T) {
		_, err := sh.exec(ctx, "su mallory")
		assert.True(t, driveerrors.IsUserUnknown(err))
		assert.Equal(t, "bob", sh.s.user)
	})

	t.Run("wrong password keeps the current user", func(t *testing.T) {
		sh.auth.password = typed(testPasswords["bob"])
		_, err := sh.exec(ctx, "su root")
		assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)
		assert.Equal(t, "bob", sh.s.user)

		_, err = sh.exec(ctx, "ls /private")
		assert.True(t, driveerrors.IsInsufficientPermissions(err))
	})

	t.Run("aborted prompt keeps the current user", func(t *testing.T) {
		sh.auth.password = func(string) (string, error) { return "", prompt.ErrAborted }
		_, err := sh.exec(ctx, "su root")
		assert.True(t, prompt.IsAborted(err))
		assert.Equal(t, "bob", sh.s.user)
	})

	t.Run("su to the current user does not ask", func(t *testing.T) {
		sh.auth.password = func(string) (string, error) {
			t.Fatal("unexpected password prompt")
			return "", nil
		}
		run(t, sh, "su bob")
	})

	sh.auth.password = typed(testPasswords["root"])
	buf.Reset()
	run(t, sh, "su root", "ls -1 /private")
	assert.Equal(t, ".\n..\n", buf.String())
}

func TestShellLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("prompts for the password", func(t *testing.T) {
		t.Setenv(EnvPassword, "")
		sh, _ := newTestShell(t, output.FormatTable)
		var label string
		sh.auth.password = func(l string) (string, error) {
			label = l
			return testPasswords["alice"], nil
		}
		require.NoError(t, sh.login(ctx))
		assert.Equal(t, "Password for alice", label)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Setenv(EnvPassword, "")
		sh, _ := newTestShell(t, output.FormatTable)
		sh.auth.password = typed("guess")
		assert.ErrorIs(t, sh.login(ctx), accounts.ErrInvalidCredentials)
	})

	t.Run("password from the environment", func(t *testing.T) {
		t.Setenv(EnvPassword, testPasswords["alice"])
		sh, _ := newTestShell(t, output.FormatTable)
		sh.auth.password = func(string) (string, error) {
			t.Fatal("unexpected password prompt")
			return "", nil
		}
		require.NoError(t, sh.login(ctx))
	})

	t.Run("wrong password from the environment", func(t *testing.T) {
		t.Setenv(EnvPassword, testPasswords["bob"])
		sh, _ := newTestShell(t, output.FormatTable)
		assert.ErrorIs(t, sh.login(ctx), accounts.ErrInvalidCredentials)
	})

	t.Run("unknown acting user", func(t *testing.T) {
		sh, _ := newTestShell(t, output.FormatTable)
		sh.s.user = "mallory"
		assert.True(t, driveerrors.IsUserUnknown(sh.login(ctx)))
	})
}

func TestSetUmask(t *testing.T) {
	ctx := context.Background()
	accts := newTestAccounts(t)
	var buf bytes.Buffer
	out := output.NewPrinter(&buf, output.FormatTable, false)

	require.NoError(t, setUmask(ctx, accts, out, "bob", "rw-:r--"))
	assert.Contains(t, buf.String(), "Umask of 'bob' set to rw-:r--")

	user, err := accts.LookupUser(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, drive.MustParsePermissions("rw-:r--"), user.Umask)

	assert.ErrorIs(t, setUmask(ctx, accts, out, "mallory", "rw-:r--"), accounts.ErrUserNotFound)
	assert.ErrorIs(t, setUmask(ctx, accts, out, "bob", "bogus"), accounts.ErrInvalidUmask)
}

func TestShellExec(t *testing.T) {
	sh, _ := newTestShell(t, output.FormatTable)
	ctx := context.Background()

	t.Run("blank line", func(t *testing.T) {
		quit, err := sh.exec(ctx, "   ")
		assert.NoError(t, err)
		assert.False(t, quit)
	})

	t.Run("exit", func(t *testing.T) {
		for _, line := range []string{"exit", "quit"} {
			quit, err := sh.exec(ctx, line)
			assert.NoError(t, err)
			assert.True(t, quit)
		}
	})

	t.Run("unknown command", func(t *testing.T) {
		_, err := sh.exec(ctx, "format c:")
		assert.ErrorContains(t, err, "unknown command")
	})

	t.Run("wrong argument count", func(t *testing.T) {
		_, err := sh.exec(ctx, "cat")
		assert.EqualError(t, err, "usage: cat <path>")
		_, err = sh.exec(ctx, "app /x")
		assert.EqualError(t, err, "usage: app <path> <program>")
	})

	t.Run("unterminated quote", func(t *testing.T) {
		_, err := sh.exec(ctx, `write /x "oops`)
		assert.ErrorContains(t, err, "parse error")
	})

	t.Run("bad ls flag", func(t *testing.T) {
		_, err := sh.exec(ctx, "ls --sort size")
		assert.ErrorContains(t, err, "invalid sort order")
	})
}

func TestShellHelp(t *testing.T) {
	sh, buf := newTestShell(t, output.FormatTable)
	run(t, sh, "help")
	for name, c := range shellCommands {
		assert.Contains(t, buf.String(), c.usage, name)
	}
	assert.Contains(t, buf.String(), "leave the shell")
}

func TestShellAppsAndLinks(t *testing.T) {
	sh, buf := newTestShell(t, output.FormatTable)

	run(t, sh, "mkdir /bin", "app /bin/me "+service.ProgramWhoami, "ln /bin/me /me")
	buf.Reset()
	run(t, sh, "run /me")
	assert.Equal(t, "alice\n", buf.String())

	run(t, sh, "rm /me", "rm /bin")
	_, err := sh.exec(context.Background(), "stat /bin")
	assert.True(t, driveerrors.IsFileUnknown(err))
}

func TestStructuredOutput(t *testing.T) {
	sh, buf := newTestShell(t, output.FormatJSON)

	run(t, sh, "mkdir /docs")
	assert.Contains(t, buf.String(), `"path": "/docs"`)

	buf.Reset()
	run(t, sh, "ls -1 /docs")
	assert.JSONEq(t, `[".", ".."]`, buf.String())

	buf.Reset()
	run(t, sh, "stats")
	assert.Contains(t, buf.String(), `"root_user": "root"`)
}

func TestListOptions(t *testing.T) {
	parse := func(args ...string) (service.ListOptions, error) {
		flags := pflag.NewFlagSet("ls", pflag.ContinueOnError)
		addListFlags(flags)
		require.NoError(t, flags.Parse(args))
		return listOptions(flags)
	}

	opts, err := parse()
	require.NoError(t, err)
	assert.Equal(t, service.ListOptions{}, opts)

	opts, err = parse("-1", "--sort", "line")
	require.NoError(t, err)
	assert.Equal(t, service.ListOptions{NamesOnly: true, ByLine: true}, opts)

	_, err = parse("--sort", "mtime")
	assert.Error(t, err)
}

func TestWriteContent(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{}
		cmd.Flags().StringP("file", "f", "", "")
		return cmd
	}

	data, err := writeContent(newCmd(), []string{"/x", "inline"})
	require.NoError(t, err)
	assert.Equal(t, "inline", data)

	path := t.TempDir() + "/content.txt"
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0644))

	cmd := newCmd()
	require.NoError(t, cmd.Flags().Set("file", path))
	data, err = writeContent(cmd, []string{"/x"})
	require.NoError(t, err)
	assert.Equal(t, "from file", data)

	_, err = writeContent(cmd, []string{"/x", "inline"})
	assert.Error(t, err)
}

func TestWriteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "dittodrive_ops_total", Help: "ops"}, []string{"op"})
	entries := prometheus.NewGauge(prometheus.GaugeOpts{Name: "dittodrive_entries", Help: "entries"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "dittodrive_latency", Help: "latency"})
	other := prometheus.NewCounter(prometheus.CounterOpts{Name: "go_other_total", Help: "other"})
	reg.MustRegister(ops, entries, latency, other)

	ops.WithLabelValues("mkdir").Add(2)
	entries.Set(5)
	latency.Observe(1.5)
	other.Inc()

	var buf bytes.Buffer
	require.NoError(t, writeMetrics(&buf, reg, metricPrefix))

	out := buf.String()
	assert.Contains(t, out, `dittodrive_ops_total{op="mkdir"} 2`)
	assert.Contains(t, out, "dittodrive_entries 5")
	assert.Contains(t, out, "dittodrive_latency_count 1")
	assert.Contains(t, out, "dittodrive_latency_sum 1.5")
	assert.NotContains(t, out, "go_other_total")
}

func TestUmaskOptions(t *testing.T) {
	options := umaskOptions("rwx:r-x")
	require.Len(t, options, 3)
	assert.Equal(t, "rwx:r-x", options[0].Value)
	for _, o := range options[1:] {
		assert.NotEqual(t, "rwx:r-x", o.Value)
	}

	assert.Len(t, umaskOptions("rw-:---"), 4)
}

func TestUserListRenderer(t *testing.T) {
	list := userList{
		{Username: "alice", DisplayName: "Alice", Umask: "rwx:r-x", Home: "/home/alice"},
		{Username: "bob", Umask: "rwx:---", Home: "/"},
	}
	assert.Equal(t, []string{"USERNAME", "NAME", "UMASK", "HOME", "CREATED"}, list.Headers())

	rows := list.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"alice", "Alice", "rwx:r-x", "/home/alice"}, rows[0][:4])
	assert.Equal(t, "bob", rows[1][1])
}

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range GetRootCmd().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{
		"init", "version", "user", "shell", "config", "stats",
		"mkdir", "write", "app", "ln", "ls", "cat", "run", "rm", "chmod", "stat", "import",
	} {
		assert.True(t, names[want], want)
	}
}
