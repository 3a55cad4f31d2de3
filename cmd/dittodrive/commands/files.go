package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/marmos91/dittodrive/pkg/config"
	"github.com/marmos91/dittodrive/pkg/drive/service"
)

type driveRunFunc func(ctx context.Context, s *session, cmd *cobra.Command, args []string) error

// driveCommand builds a command that opens the drive, authenticates the
// acting user and runs fn in a session for it.
func driveCommand(use, short, long string, args cobra.PositionalArgs, fn driveRunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := newPrinter()
			if err != nil {
				return err
			}
			return withRuntime(cmd, func(ctx context.Context, rt *config.Runtime) error {
				s := newSession(rt.Service, actingUser(cmd, rt.Config.Drive.RootUser), printer)
				if err := newAuthenticator(rt.Accounts).login(ctx, s.user); err != nil {
					return err
				}
				return fn(ctx, s, cmd, args)
			})
		},
	}
	cmd.Flags().StringP("user", "u", "", "Act as this user (default: $DITTODRIVE_USER, then the root user)")
	return cmd
}

func addFileCommands(root *cobra.Command) {
	mkdirCmd := driveCommand("mkdir <path>...", "Create directories",
		`Create one or more directories. The parent must exist and be writable
by the acting user; the new directory gets the user's umask.

Examples:
  dittodrive mkdir /docs --user alice
  dittodrive mkdir /docs/a /docs/b`,
		cobra.MinimumNArgs(1),
		func(ctx context.Context, s *session, _ *cobra.Command, args []string) error {
			for _, p := range args {
				if err := s.mkdir(ctx, p); err != nil {
					return err
				}
			}
			return nil
		})

	writeCmd := driveCommand("write <path> [content]", "Create or overwrite a plain file",
		`Write content to a plain file, creating it when it does not exist.

Content comes from the argument, from --file, or from stdin.

Examples:
  dittodrive write /docs/notes.txt "hello"
  dittodrive write /docs/report.txt --file report.txt
  echo hello | dittodrive write /docs/notes.txt`,
		cobra.RangeArgs(1, 2),
		func(ctx context.Context, s *session, cmd *cobra.Command, args []string) error {
			data, err := writeContent(cmd, args)
			if err != nil {
				return err
			}
			return s.write(ctx, args[0], data)
		})
	writeCmd.Flags().StringP("file", "f", "", "Read content from this file (- for stdin)")

	appCmd := driveCommand("app <path> <program>", "Create an app",
		fmt.Sprintf(`Create an app entry running a registered program.

Built-in programs:
  %-8s prints the name of the user running the app
  %-8s prints the path of the app
  %-8s prints the owner of the app

Example:
  dittodrive app /bin/whoami whoami`, service.ProgramWhoami, service.ProgramPath, service.ProgramOwner),
		cobra.ExactArgs(2),
		func(ctx context.Context, s *session, _ *cobra.Command, args []string) error {
			return s.app(ctx, args[0], args[1])
		})

	lnCmd := driveCommand("ln <target> <path>", "Create a link",
		`Create a link at path pointing to target. The target is resolved when
the link is followed: absolute targets from the root, relative targets
from the link's directory.

Example:
  dittodrive ln /docs/notes.txt /notes`,
		cobra.ExactArgs(2),
		func(ctx context.Context, s *session, _ *cobra.Command, args []string) error {
			return s.ln(ctx, args[0], args[1])
		})

	lsCmd := driveCommand("ls [path]", "List a directory",
		`List a directory: the "." and ".." lines, then one line per child.

Each line is "<type><owner><others> <name>", e.g. "drwxdr-x- docs".

Examples:
  dittodrive ls /docs
  dittodrive ls /docs --names --sort line`,
		cobra.MaximumNArgs(1),
		func(ctx context.Context, s *session, cmd *cobra.Command, args []string) error {
			opts, err := listOptions(cmd.Flags())
			if err != nil {
				return err
			}
			p := ""
			if len(args) == 1 {
				p = args[0]
			}
			return s.ls(ctx, p, opts)
		})
	addListFlags(lsCmd.Flags())

	catCmd := driveCommand("cat <path>", "Print a plain file",
		"Print the content of a plain file, following a link if path is one.",
		cobra.ExactArgs(1),
		func(ctx context.Context, s *session, _ *cobra.Command, args []string) error {
			return s.cat(ctx, args[0])
		})

	runCmd := driveCommand("run <path>", "Execute an entry",
		`Execute an entry: directories list, plain files print their content,
apps run their program and links execute their target.`,
		cobra.ExactArgs(1),
		func(ctx context.Context, s *session, _ *cobra.Command, args []string) error {
			return s.run(ctx, args[0])
		})

	rmCmd := driveCommand("rm <path>...", "Remove entries",
		`Remove entries, directories recursively. Nothing is removed unless the
acting user may delete every entry involved.`,
		cobra.MinimumNArgs(1),
		func(ctx context.Context, s *session, _ *cobra.Command, args []string) error {
			for _, p := range args {
				if err := s.rm(ctx, p); err != nil {
					return err
				}
			}
			return nil
		})

	chmodCmd := driveCommand("chmod <permissions> <path>", "Change permissions",
		`Change the permissions of an entry. Only the owner and the root user
may do so.

Permissions are "<owner>:<others>" triads of r, w, x (delete follows
write), or the 8-character form with an explicit d.

Examples:
  dittodrive chmod rw-:r-- /docs/notes.txt
  dittodrive chmod rwxdr-x- /docs`,
		cobra.ExactArgs(2),
		func(ctx context.Context, s *session, _ *cobra.Command, args []string) error {
			return s.chmod(ctx, args[0], args[1])
		})

	statCmd := driveCommand("stat <path>", "Show entry details",
		"Show the id, owner, permissions, size and modification time of an entry.",
		cobra.ExactArgs(1),
		func(ctx context.Context, s *session, _ *cobra.Command, args []string) error {
			return s.stat(ctx, args[0])
		})

	importCmd := driveCommand("import <path> <file>", "Apply an XML import record",
		`Apply an import record to an entry, restoring its id and, when present,
its permissions. Use - to read the record from stdin.

Example:
  echo '<file id="42"><perm>rw-:r--</perm></file>' | dittodrive import /docs/notes.txt -`,
		cobra.ExactArgs(2),
		func(ctx context.Context, s *session, _ *cobra.Command, args []string) error {
			doc, err := readSource(args[1])
			if err != nil {
				return err
			}
			return s.importDoc(ctx, args[0], doc)
		})

	root.AddCommand(mkdirCmd, writeCmd, appCmd, lnCmd, lsCmd, catCmd, runCmd, rmCmd, chmodCmd, statCmd, importCmd, newStatsCmd())
}

func writeContent(cmd *cobra.Command, args []string) (string, error) {
	file, _ := cmd.Flags().GetString("file")
	switch {
	case len(args) == 2 && file != "":
		return "", fmt.Errorf("give content either as an argument or with --file")
	case len(args) == 2:
		return args[1], nil
	case file != "":
		data, err := readSource(file)
		return string(data), err
	default:
		data, err := readSource("-")
		return string(data), err
	}
}

// readSource reads a file, or stdin for "-".
func readSource(name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// addListFlags registers the flags read by listOptions.
func addListFlags(flags *pflag.FlagSet) {
	flags.BoolP("names", "1", false, "Print names only")
	flags.String("sort", "name", "Order children by name or by rendered line (name|line)")
}

func listOptions(flags *pflag.FlagSet) (service.ListOptions, error) {
	names, _ := flags.GetBool("names")
	sortBy, _ := flags.GetString("sort")
	opts := service.ListOptions{NamesOnly: names}
	switch sortBy {
	case "name", "":
	case "line":
		opts.ByLine = true
	default:
		return opts, fmt.Errorf("invalid sort order %q (valid: name, line)", sortBy)
	}
	return opts, nil
}
