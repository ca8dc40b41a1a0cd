// Package main provides the sysproxy entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rennerdo30/sysproxy/internal/cli"
	"github.com/rennerdo30/sysproxy/internal/config"
	"github.com/rennerdo30/sysproxy/internal/logging"
	"github.com/rennerdo30/sysproxy/internal/sysproxy"
	"github.com/rennerdo30/sysproxy/internal/version"
)

const defaultConfigFile = "sysproxy.yaml"

// app holds the state shared by the commands of one invocation.
type app struct {
	configFile string
	logLevel   string
	cfg        config.Config
	manager    func() sysproxy.Manager
}

func newRootCmd(manager func() sysproxy.Manager) *cobra.Command {
	a := &app{cfg: config.DefaultConfig(), manager: manager}

	rootCmd := &cobra.Command{
		Use:   "sysproxy",
		Short: "Read and change the operating system proxy settings",
		Long: `sysproxy reads and changes the global HTTP/HTTPS proxy configuration of the
operating system. It can point the system at a fixed proxy server, at a proxy
auto-configuration (PAC) URL, or turn the proxy off.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", defaultConfigFile, "config file path")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if err := config.LoadAndValidate(a.configFile, &cfg); err != nil {
				return fmt.Errorf("configuration invalid: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	})

	rootCmd.AddCommand(newConfigCommand())

	rootCmd.AddCommand(cli.NewCommands(cli.Options{
		Manager: a.manager,
		Config:  func() config.Config { return a.cfg },
	})...)

	return rootCmd
}

// setup loads the configuration and configures logging before any command
// runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	// config init and validate read the file themselves.
	if cmd.Name() == "init" || cmd.Name() == "validate" || cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.LoadFile(a.configFile, cmd.Flags().Changed("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if err := logging.Setup(cfg.Logging); err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	logging.Debug("Configuration loaded", "path", a.configFile, "profiles", len(cfg.Profiles))
	a.cfg = cfg
	return nil
}

func newConfigCommand() *cobra.Command {
	var output string
	var force bool

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a sample configuration file",
		Long: `Generate a sample configuration file with sensible defaults.

The generated configuration includes:
  - Logging settings
  - The local REST API listener and metrics endpoint
  - Example direct, manual and PAC profiles`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(output); err == nil {
				if !force {
					return fmt.Errorf("file %s already exists (use --force to overwrite)", output)
				}
				backup, err := config.Backup(output)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Backed up existing file to %s\n", backup)
			}

			if err := os.WriteFile(output, []byte(config.DefaultConfigTemplate), 0600); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated configuration: %s\n\n", output)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintf(out, "  1. Review and customize the profiles\n")
			fmt.Fprintf(out, "  2. Apply one: sysproxy -c %s profile apply local\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", defaultConfigFile, "output file path")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing file")

	configCmd.AddCommand(initCmd)
	return configCmd
}

func main() {
	if err := newRootCmd(sysproxy.New).Execute(); err != nil {
		logging.Close()
		os.Exit(1)
	}
	logging.Close()
}
