package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/marmos91/dittodrive/internal/cli/output"
	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/pkg/api"
	"github.com/marmos91/dittodrive/pkg/config"
	"github.com/marmos91/dittodrive/pkg/metrics"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive drive session",
	Long: `Start an interactive session on the drive.

The session keeps a working directory; relative paths resolve against it.
Type "help" for the list of commands and "exit" (or Ctrl-D) to leave.

The shell asks for the acting user's password at start, unless
$DITTODRIVE_PASSWORD is set, and "su" asks for the password of the
account it switches to.

While the shell runs, edits to the logging level in the configuration
file take effect immediately, and when metrics are enabled with a port,
/health, /health/ready and /metrics are served on it.

Examples:
  dittodrive shell --user alice`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	shellCmd.Flags().StringP("user", "u", "", "Act as this user (default: $DITTODRIVE_USER, then the root user)")
	shellCmd.Flags().String("history", "", "History file (default: $XDG_CONFIG_HOME/dittodrive/history)")
}

// shellCommand is one command of the interactive shell.
type shellCommand struct {
	usage string
	help  string
	min   int
	max   int // -1 for no limit
	run   func(ctx context.Context, sh *shell, args []string) error
}

var shellCommands = map[string]shellCommand{
	"mkdir": {"mkdir <path>...", "create directories", 1, -1,
		func(ctx context.Context, sh *shell, args []string) error {
			for _, p := range args {
				if err := sh.s.mkdir(ctx, p); err != nil {
					return err
				}
			}
			return nil
		}},
	"write": {"write <path> <content>...", "create or overwrite a plain file", 2, -1,
		func(ctx context.Context, sh *shell, args []string) error {
			return sh.s.write(ctx, args[0], strings.Join(args[1:], " "))
		}},
	"app": {"app <path> <program>", "create an app", 2, 2,
		func(ctx context.Context, sh *shell, args []string) error {
			return sh.s.app(ctx, args[0], args[1])
		}},
	"ln": {"ln <target> <path>", "create a link", 2, 2,
		func(ctx context.Context, sh *shell, args []string) error {
			return sh.s.ln(ctx, args[0], args[1])
		}},
	"ls": {"ls [-1] [--sort name|line] [path]", "list a directory", 0, -1,
		func(ctx context.Context, sh *shell, args []string) error {
			flags := pflag.NewFlagSet("ls", pflag.ContinueOnError)
			flags.SetOutput(io.Discard)
			addListFlags(flags)
			if err := flags.Parse(args); err != nil {
				return err
			}
			opts, err := listOptions(flags)
			if err != nil {
				return err
			}
			switch flags.NArg() {
			case 0:
				return sh.s.ls(ctx, "", opts)
			case 1:
				return sh.s.ls(ctx, flags.Arg(0), opts)
			default:
				return fmt.Errorf("usage: ls [-1] [--sort name|line] [path]")
			}
		}},
	"cat": {"cat <path>", "print a plain file", 1, 1,
		func(ctx context.Context, sh *shell, args []string) error {
			return sh.s.cat(ctx, args[0])
		}},
	"run": {"run <path>", "execute an entry", 1, 1,
		func(ctx context.Context, sh *shell, args []string) error {
			return sh.s.run(ctx, args[0])
		}},
	"rm": {"rm <path>...", "remove entries", 1, -1,
		func(ctx context.Context, sh *shell, args []string) error {
			for _, p := range args {
				if err := sh.s.rm(ctx, p); err != nil {
					return err
				}
			}
			return nil
		}},
	"chmod": {"chmod <permissions> <path>", "change permissions", 2, 2,
		func(ctx context.Context, sh *shell, args []string) error {
			return sh.s.chmod(ctx, args[0], args[1])
		}},
	"stat": {"stat <path>", "show entry details", 1, 1,
		func(ctx context.Context, sh *shell, args []string) error {
			return sh.s.stat(ctx, args[0])
		}},
	"import": {"import <path> <file>", "apply an XML import record from a local file", 2, 2,
		func(ctx context.Context, sh *shell, args []string) error {
			doc, err := readSource(args[1])
			if err != nil {
				return err
			}
			return sh.s.importDoc(ctx, args[0], doc)
		}},
	"cd": {"cd [path]", "change the working directory (default /)", 0, 1,
		func(ctx context.Context, sh *shell, args []string) error {
			if len(args) == 0 {
				return sh.s.cd(ctx, "/")
			}
			return sh.s.cd(ctx, args[0])
		}},
	"pwd": {"pwd", "print the working directory", 0, 0,
		func(_ context.Context, sh *shell, _ []string) error {
			sh.s.out.Text(sh.s.cwd)
			return nil
		}},
	"whoami": {"whoami", "print the acting user", 0, 0,
		func(_ context.Context, sh *shell, _ []string) error {
			sh.s.out.Text(sh.s.user)
			return nil
		}},
	"su": {"su <user>", "act as another user (asks for its password)", 1, 1,
		func(ctx context.Context, sh *shell, args []string) error {
			return sh.su(ctx, args[0])
		}},
	"stats": {"stats", "show drive statistics", 0, 0,
		func(ctx context.Context, sh *shell, _ []string) error {
			return sh.s.stats(ctx)
		}},
}

// shell reads command lines and runs them in a session.
type shell struct {
	s    *session
	auth *authenticator
}

func (sh *shell) prompt() string {
	return fmt.Sprintf("%s@dittodrive:%s$ ", sh.s.user, sh.s.cwd)
}

// login authenticates the user the shell starts as.
func (sh *shell) login(ctx context.Context) error {
	if _, err := sh.s.svc.Stats(ctx, sh.s.user); err != nil {
		return err
	}
	return sh.auth.login(ctx, sh.s.user)
}

// su switches the acting user after asking for the target's password.
// The working directory is kept.
func (sh *shell) su(ctx context.Context, username string) error {
	if username == sh.s.user {
		return nil
	}
	if _, err := sh.s.svc.Stats(ctx, username); err != nil {
		return err
	}
	if err := sh.auth.ask(ctx, username); err != nil {
		return err
	}
	sh.s.user = username
	return nil
}

// exec runs one command line. quit reports an exit request.
func (sh *shell) exec(ctx context.Context, line string) (quit bool, err error) {
	args, err := shlex.Split(line)
	if err != nil {
		return false, fmt.Errorf("parse error: %w", err)
	}
	if len(args) == 0 {
		return false, nil
	}

	name, args := args[0], args[1:]
	switch name {
	case "exit", "quit":
		return true, nil
	case "help", "?":
		return false, sh.help()
	}

	c, ok := shellCommands[name]
	if !ok {
		return false, fmt.Errorf("unknown command %q (type \"help\" for a list)", name)
	}
	if len(args) < c.min || (c.max >= 0 && len(args) > c.max) {
		return false, fmt.Errorf("usage: %s", c.usage)
	}
	return false, c.run(ctx, sh, args)
}

func (sh *shell) help() error {
	names := make([]string, 0, len(shellCommands))
	for name := range shellCommands {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([][2]string, 0, len(names)+2)
	for _, name := range names {
		c := shellCommands[name]
		pairs = append(pairs, [2]string{c.usage, c.help})
	}
	pairs = append(pairs, [2]string{"help", "show this help"}, [2]string{"exit", "leave the shell"})
	return output.KeyValues(sh.s.out.Writer(), pairs)
}

func completer() *readline.PrefixCompleter {
	names := []string{"help", "exit"}
	for name := range shellCommands {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]readline.PrefixCompleterInterface, 0, len(names))
	for _, name := range names {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

func runShell(cmd *cobra.Command, args []string) error {
	printer, err := newPrinter()
	if err != nil {
		return err
	}
	errOut := output.NewPrinter(os.Stderr, output.FormatTable, !noColor)

	return withRuntime(cmd, func(ctx context.Context, rt *config.Runtime) error {
		sh := &shell{
			s:    newSession(rt.Service, actingUser(cmd, rt.Config.Drive.RootUser), printer),
			auth: newAuthenticator(rt.Accounts),
		}
		if err := sh.login(ctx); err != nil {
			return err
		}

		watchLogLevel()

		if rt.Config.Metrics.Enabled && rt.Config.Metrics.Port > 0 {
			stop := startMonitoring(ctx, rt)
			defer stop()
		}

		rl, err := readline.NewEx(&readline.Config{
			Prompt:            sh.prompt(),
			HistoryFile:       historyFile(cmd),
			AutoComplete:      completer(),
			InterruptPrompt:   "^C",
			EOFPrompt:         "exit",
			HistorySearchFold: true,
		})
		if err != nil {
			return fmt.Errorf("failed to start shell: %w", err)
		}
		defer func() { _ = rl.Close() }()

		for {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			if err != nil {
				return err
			}

			quit, err := sh.exec(ctx, line)
			if err != nil {
				errOut.Error(err.Error())
			}
			if quit {
				return nil
			}
			rl.SetPrompt(sh.prompt())
		}
	})
}

func historyFile(cmd *cobra.Command) string {
	if h, _ := cmd.Flags().GetString("history"); h != "" {
		return h
	}
	dir := config.GetConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

// watchLogLevel applies logging level edits of the config file while the
// shell runs.
func watchLogLevel() {
	err := config.Watch(GetConfigFile(),
		func(cfg *config.Config) {
			logger.SetLevel(cfg.Logging.Level)
			logger.Debug("Configuration reloaded", "level", cfg.Logging.Level)
		},
		func(err error) {
			logger.Warn("Ignoring invalid configuration change", logger.Err(err))
		})
	if err != nil {
		logger.Debug("Configuration file not watched", logger.Err(err))
	}
}

// startMonitoring serves the health and metrics endpoints until the
// returned function is called.
func startMonitoring(ctx context.Context, rt *config.Runtime) func() {
	srv := api.NewServer(api.Config{Port: rt.Config.Metrics.Port},
		rt.Service, rt.Config.Drive.RootUser, metrics.GetRegistry())

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Start(ctx); err != nil {
			logger.Error("Monitoring server error", logger.Err(err))
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
