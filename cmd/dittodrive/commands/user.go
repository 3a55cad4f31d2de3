package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/dittodrive/internal/cli/output"
	"github.com/marmos91/dittodrive/internal/cli/prompt"
	"github.com/marmos91/dittodrive/internal/cli/timeutil"
	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/pkg/accounts"
	"github.com/marmos91/dittodrive/pkg/config"
)

var (
	userAddName     string
	userAddUmask    string
	userAddHome     string
	userAddPassword string
	userAddInteract bool
	userDeleteForce bool
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management",
	Long: `Manage the accounts that act on the drive.

Examples:
  # Add a user (prompts for a password)
  dittodrive user add alice --umask rwx:r--

  # List users
  dittodrive user list

  # Change a password
  dittodrive user passwd alice

  # Change the umask applied to a user's new entries
  dittodrive user umask alice rwx:---

  # Delete a user that owns nothing
  dittodrive user delete alice`,
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserAdd,
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users",
	Args:    cobra.NoArgs,
	RunE:    runUserList,
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a user",
	Long: `Delete a user account. Accounts that still own entries in the drive,
and the root account, cannot be deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: runUserDelete,
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Change a user's password",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserPasswd,
}

var userUmaskCmd = &cobra.Command{
	Use:   "umask <username> <umask>",
	Short: "Change a user's umask",
	Long: `Change the permissions given to entries the user creates from now on.
Existing entries keep their permissions.`,
	Args: cobra.ExactArgs(2),
	RunE: runUserUmask,
}

func init() {
	userAddCmd.Flags().StringVar(&userAddName, "name", "", "Display name")
	userAddCmd.Flags().StringVar(&userAddUmask, "umask", "", "Umask for new entries (default: drive.default_umask)")
	userAddCmd.Flags().StringVar(&userAddHome, "home", "/", "Home path")
	userAddCmd.Flags().StringVar(&userAddPassword, "password", "", "Password (prompted when omitted)")
	userAddCmd.Flags().BoolVarP(&userAddInteract, "interactive", "i", false, "Prompt for the display name and umask")
	userDeleteCmd.Flags().BoolVarP(&userDeleteForce, "force", "f", false, "Skip confirmation")

	userCmd.AddCommand(userAddCmd, userListCmd, userDeleteCmd, userPasswdCmd, userUmaskCmd)
}

// withAccounts opens only the accounts database.
func withAccounts(fn func(ctx context.Context, cfg *config.Config, accts *accounts.GORMStore) error) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	accts, err := accounts.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open accounts database: %w", err)
	}
	defer accts.Close()

	return fn(context.Background(), cfg, accts)
}

func readNewPassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, accounts.ValidatePassword(flagValue)
	}
	password, err := prompt.NewPassword(accounts.ValidatePassword)
	if err != nil {
		return "", err
	}
	return password, nil
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	username := args[0]
	printer, err := newPrinter()
	if err != nil {
		return err
	}

	return withAccounts(func(ctx context.Context, cfg *config.Config, accts *accounts.GORMStore) error {
		password, err := readNewPassword(userAddPassword)
		if err != nil {
			if prompt.IsAborted(err) {
				fmt.Println("\nAborted.")
				return nil
			}
			return err
		}
		hash, err := accounts.HashPassword(password)
		if err != nil {
			return err
		}

		umask := userAddUmask
		if umask == "" {
			umask = cfg.Drive.DefaultUmask
		}
		if userAddInteract {
			if userAddName, umask, err = promptProfile(userAddName, umask); err != nil {
				if prompt.IsAborted(err) {
					fmt.Println("\nAborted.")
					return nil
				}
				return err
			}
		}

		user := &accounts.User{
			Username:     username,
			DisplayName:  userAddName,
			PasswordHash: hash,
			Umask:        umask,
			Home:         userAddHome,
		}
		if _, err := accts.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to create user %q: %w", username, err)
		}
		logger.Info("User created", logger.Username(username))

		if printer.Format() != output.FormatTable {
			return printer.Print(user)
		}
		printer.Success(fmt.Sprintf("User '%s' created (umask %s)", username, user.Umask))
		return nil
	})
}

// umaskOptions are the umask presets offered by "user add -i". The
// current value is offered first.
func umaskOptions(current string) []prompt.SelectOption {
	options := []prompt.SelectOption{
		{Label: "current (" + current + ")", Value: current, Description: "keep the configured default"},
	}
	for _, preset := range []prompt.SelectOption{
		{Label: "shared (rwx:r-x)", Value: "rwx:r-x", Description: "others may read and traverse"},
		{Label: "private (rwx:---)", Value: "rwx:---", Description: "others have no access"},
		{Label: "open (rwx:rwx)", Value: "rwx:rwx", Description: "others may also write and delete"},
	} {
		if preset.Value != current {
			options = append(options, preset)
		}
	}
	return options
}

func promptProfile(name, umask string) (string, string, error) {
	if name == "" {
		var err error
		if name, err = prompt.InputOptional("Display name"); err != nil {
			return "", "", err
		}
	}
	umask, err := prompt.Select("Umask for new entries", umaskOptions(umask))
	if err != nil {
		return "", "", err
	}
	return name, umask, nil
}

// userList renders accounts as a table.
type userList []*accounts.User

func (l userList) Headers() []string {
	return []string{"USERNAME", "NAME", "UMASK", "HOME", "CREATED"}
}

func (l userList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, u := range l {
		rows = append(rows, []string{u.Username, u.GetDisplayName(), u.Umask, u.Home, timeutil.FormatTime(u.CreatedAt)})
	}
	return rows
}

func runUserList(cmd *cobra.Command, args []string) error {
	printer, err := newPrinter()
	if err != nil {
		return err
	}

	return withAccounts(func(ctx context.Context, _ *config.Config, accts *accounts.GORMStore) error {
		users, err := accts.ListUsers(ctx)
		if err != nil {
			return err
		}
		if len(users) == 0 && printer.Format() == output.FormatTable {
			printer.Text("No users found. Run 'dittodrive init' to create the root account.")
			return nil
		}
		return printer.Print(userList(users))
	})
}

func runUserDelete(cmd *cobra.Command, args []string) error {
	username := args[0]

	return withRuntime(cmd, func(ctx context.Context, rt *config.Runtime) error {
		if username == rt.Config.Drive.RootUser {
			return fmt.Errorf("the root account %q cannot be deleted", username)
		}
		if _, err := rt.Accounts.GetUser(ctx, username); err != nil {
			return fmt.Errorf("user %q: %w", username, err)
		}

		owned, err := rt.Service.Owned(ctx, username)
		if err != nil {
			return err
		}
		if owned > 0 {
			return fmt.Errorf("user %q still owns %d entries; remove them first", username, owned)
		}

		confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete user '%s'?", username), userDeleteForce)
		if err != nil {
			if prompt.IsAborted(err) {
				fmt.Println("\nAborted.")
				return nil
			}
			return err
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}

		if err := rt.Accounts.DeleteUser(ctx, username); err != nil {
			return err
		}
		logger.Info("User deleted", logger.Username(username))
		output.NewPrinter(os.Stdout, output.FormatTable, !noColor).Success(fmt.Sprintf("User '%s' deleted", username))
		return nil
	})
}

func runUserPasswd(cmd *cobra.Command, args []string) error {
	username := args[0]

	return withAccounts(func(ctx context.Context, _ *config.Config, accts *accounts.GORMStore) error {
		if _, err := accts.GetUser(ctx, username); err != nil {
			return fmt.Errorf("user %q: %w", username, err)
		}
		password, err := readNewPassword("")
		if err != nil {
			if prompt.IsAborted(err) {
				fmt.Println("\nAborted.")
				return nil
			}
			return err
		}
		hash, err := accounts.HashPassword(password)
		if err != nil {
			return err
		}
		if err := accts.UpdatePassword(ctx, username, hash); err != nil {
			return err
		}
		output.NewPrinter(os.Stdout, output.FormatTable, !noColor).Success(fmt.Sprintf("Password of '%s' updated", username))
		return nil
	})
}

// umaskUpdater is the part of the accounts store "user umask" needs.
type umaskUpdater interface {
	SetUmask(ctx context.Context, username, umask string) error
}

func setUmask(ctx context.Context, accts umaskUpdater, out *output.Printer, username, umask string) error {
	if err := accts.SetUmask(ctx, username, umask); err != nil {
		return fmt.Errorf("user %q: %w", username, err)
	}
	logger.Info("User umask changed", logger.Username(username))
	out.Success(fmt.Sprintf("Umask of '%s' set to %s", username, umask))
	return nil
}

func runUserUmask(cmd *cobra.Command, args []string) error {
	return withAccounts(func(ctx context.Context, _ *config.Config, accts *accounts.GORMStore) error {
		return setUmask(ctx, accts, output.NewPrinter(os.Stdout, output.FormatTable, !noColor), args[0], args[1])
	})
}
