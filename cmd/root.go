package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/claspx/cli/internal/account"
	"github.com/claspx/cli/internal/clasp"
	"github.com/claspx/cli/internal/envfile"
	"github.com/claspx/cli/internal/interaction"
	"github.com/claspx/cli/internal/migrate"
	"github.com/claspx/cli/internal/settings"
	"github.com/claspx/cli/internal/tui"
	"github.com/claspx/cli/internal/vault"
)

// Per-project files in the working directory.
const (
	projectConfigFile    = ".claspx"
	legacyDeploymentFile = ".deployment-id"
)

var (
	// Command line flags
	listAccounts bool
	editAccounts bool

	version = "1.0.0" // This will be set during build
)

// exit is a variable that can be overridden for testing purposes
var exit = os.Exit

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "claspx [clasp arguments...]",
	Short: "claspx - per-project account switching for the clasp deploy tool",
	Long: `claspx keeps one stored credential per named account and activates the
right one for the current project before delegating to clasp.

Examples:
  # Resolve and activate the project's account
  claspx

  # List stored accounts, marking the project's active one
  claspx --list

  # Manage accounts interactively
  claspx --edit

  # Deploy with the project's account
  claspx push`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case listAccounts:
			return runList()
		case editAccounts:
			return runEdit()
		default:
			return runDeploy(args)
		}
	},
}

// runtimeEnv bundles the stores every command path needs.
type runtimeEnv struct {
	vault  *vault.Vault
	config *envfile.Store
	runner clasp.CLI
}

func loadRuntime() (*runtimeEnv, error) {
	cfg, err := settings.Load()
	if err != nil {
		return nil, err
	}
	v, err := vault.New(cfg.VaultDir, cfg.CredentialsPath)
	if err != nil {
		return nil, err
	}
	return &runtimeEnv{
		vault:  v,
		config: envfile.New(projectConfigFile),
		runner: clasp.CLI{Bin: cfg.ClaspBin},
	}, nil
}

// runList prints every stored account, marking the one active for the
// current project.
func runList() error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	names, err := rt.vault.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No accounts stored. Run 'claspx --edit' to add one.")
		return nil
	}

	active, _, err := rt.config.Read(envfile.KeyAccount)
	if err != nil {
		return err
	}

	styled := term.IsTerminal(int(os.Stdout.Fd()))
	out := termenv.NewOutput(os.Stdout)
	for _, name := range names {
		marker := " "
		display := name
		if name == active && active != "" {
			marker = "*"
			if styled {
				display = out.String(name).Bold().String()
			}
		}
		fmt.Printf("%s %s\n", marker, display)
	}
	return nil
}

// runEdit launches the interactive account manager.
func runEdit() error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	active, _, err := rt.config.Read(envfile.KeyAccount)
	if err != nil {
		return err
	}
	prov := &account.Provisioner{Vault: rt.vault, Runner: rt.runner}
	return tui.Run(rt.vault, prov, rt.runner.LoginCommand, active)
}

// runDeploy resolves the project's account, activates it, then hands the
// remaining arguments to clasp, mirroring its exit code.
func runDeploy(args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	// Fail before touching any state when delegation is doomed anyway.
	if len(args) > 0 {
		if err := rt.runner.Check(); err != nil {
			return err
		}
	}

	name, err := resolveAccount(rt)
	if err != nil {
		return err
	}
	if err := activateWithRecovery(rt, &name); err != nil {
		return err
	}

	if len(args) == 0 {
		fmt.Printf("Active account: %s\n", name)
		return nil
	}

	code, err := rt.runner.Exec(args)
	if err != nil {
		return err
	}
	if code != 0 {
		exit(code)
	}
	return nil
}

// resolveAccount decides which account the project uses: the configured
// value, legacy migration, or first-time setup.
func resolveAccount(rt *runtimeEnv) (string, error) {
	if rt.config.Exists() {
		name, ok, err := rt.config.Read(envfile.KeyAccount)
		if err != nil {
			return "", err
		}
		if ok && name != "" {
			return name, nil
		}
		return selectAndPersist(rt)
	}

	eng := &migrate.Engine{LegacyPath: legacyDeploymentFile, Config: rt.config}
	if eng.Needed() {
		fmt.Println("Found a legacy deployment file; migrating to the new project config.")
		if err := eng.Run(func() (string, error) { return selectAccount(rt) }); err != nil {
			return "", err
		}
		name, _, err := rt.config.Read(envfile.KeyAccount)
		if err != nil {
			return "", err
		}
		return name, nil
	}

	return selectAndPersist(rt)
}

// selectAccount runs the interactive pick-existing-or-create flow.
func selectAccount(rt *runtimeEnv) (string, error) {
	if !interaction.IsTerminal(os.Stdin) {
		return "", errors.New("no account configured for this project and no interactive terminal attached; run claspx from a terminal to set one up")
	}

	names, err := rt.vault.List()
	if err != nil {
		return "", err
	}
	prov := &account.Provisioner{Vault: rt.vault, Runner: rt.runner}

	if len(names) == 0 {
		fmt.Println("No stored accounts yet; let's create one.")
		return createAccount(prov)
	}

	choice, err := interaction.ChooseAccount("Select an account for this project", names)
	if err != nil {
		return "", err
	}
	if choice == interaction.CreateNew {
		return createAccount(prov)
	}
	return choice, nil
}

func createAccount(prov *account.Provisioner) (string, error) {
	name, err := interaction.PromptNewName(prov.Validate)
	if err != nil {
		return "", err
	}
	fmt.Println("Opening the clasp login flow; complete it in your browser.")
	if err := prov.Create(name); err != nil {
		return "", err
	}
	fmt.Printf("Stored credentials for account %q\n", name)
	return name, nil
}

func selectAndPersist(rt *runtimeEnv) (string, error) {
	name, err := selectAccount(rt)
	if err != nil {
		return "", err
	}
	if err := rt.config.Write(envfile.KeyAccount, name); err != nil {
		return "", err
	}
	return name, nil
}

// activateWithRecovery activates the named account. When its credentials
// are missing from the vault it offers to log in as that account now or
// to pick a different one, instead of failing outright.
func activateWithRecovery(rt *runtimeEnv, name *string) error {
	err := rt.vault.Activate(*name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, vault.ErrNotFound) {
		return err
	}

	fmt.Fprintf(os.Stderr, "No stored credentials for account %q.\n", *name)
	if !interaction.IsTerminal(os.Stdin) {
		return err
	}

	prov := &account.Provisioner{Vault: rt.vault, Runner: rt.runner}
	createNow, perr := interaction.PromptYesNo(fmt.Sprintf("Log in as %q now?", *name))
	if perr != nil {
		return perr
	}
	if createNow {
		fmt.Println("Opening the clasp login flow; complete it in your browser.")
		if err := prov.Create(*name); err != nil {
			return err
		}
	} else {
		chosen, err := selectAndPersist(rt)
		if err != nil {
			return err
		}
		*name = chosen
	}
	return rt.vault.Activate(*name)
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().BoolVarP(&listAccounts, "list", "l", false, "List stored accounts, marking the project's active one")
	rootCmd.Flags().BoolVarP(&editAccounts, "edit", "e", false, "Open the interactive account manager")
	// Stop flag parsing at the first positional so clasp's own flags pass
	// through untouched.
	rootCmd.Flags().SetInterspersed(false)

	// Add version command
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of claspx",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("claspx v%s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd)
}
