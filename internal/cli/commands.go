// Package cli provides the sysproxy subcommands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rennerdo30/sysproxy/internal/api"
	"github.com/rennerdo30/sysproxy/internal/config"
	"github.com/rennerdo30/sysproxy/internal/metrics"
	"github.com/rennerdo30/sysproxy/internal/pac"
	"github.com/rennerdo30/sysproxy/internal/sysproxy"
	"github.com/rennerdo30/sysproxy/internal/tray"
)

// Options supplies the commands with their dependencies. Both functions are
// called when a command runs, after flags and configuration were loaded.
type Options struct {
	Manager func() sysproxy.Manager
	Config  func() config.Config
}

// NewCommands creates the proxy management commands.
func NewCommands(opts Options) []*cobra.Command {
	return []*cobra.Command{
		newGetCommand(opts),
		newSetCommand(opts),
		newOffCommand(opts),
		newProfileCommand(opts),
		newSnapshotCommand(opts),
		newResolveCommand(opts),
		newPACCommand(opts),
		newServeCommand(opts),
		newTrayCommand(opts),
		newCtlCommand(),
	}
}

func newGetCommand(opts Options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the current system proxy settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := sysproxy.Capture(opts.Manager())
			if err != nil {
				return err
			}
			if asJSON {
				return writeSnapshotJSON(cmd.OutOrStdout(), snap)
			}
			return printSnapshot(cmd.OutOrStdout(), snap)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func newSetCommand(opts Options) *cobra.Command {
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Enable a manual or automatic proxy",
	}

	var host, bypass string
	var port uint16
	manualCmd := &cobra.Command{
		Use:   "manual",
		Short: "Route traffic through a fixed proxy server",
		Long: `Route HTTP and HTTPS traffic through a fixed proxy server.

Example:
  sysproxy set manual --host 127.0.0.1 --port 7890
  sysproxy set manual --host proxy.corp --port 3128 --bypass "*.corp;<local>"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := sysproxy.ManualProxy{Enable: true, Host: host, Port: port, Bypass: bypass}
			if err := opts.Manager().SetManualProxy(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Manual proxy set to %s\n", p.Server())
			return nil
		},
	}
	manualCmd.Flags().StringVar(&host, "host", "", "proxy host (required)")
	manualCmd.Flags().Uint16Var(&port, "port", 0, "proxy port (required)")
	manualCmd.Flags().StringVar(&bypass, "bypass", "<local>", "hosts that skip the proxy, ';' separated")
	manualCmd.MarkFlagRequired("host")
	manualCmd.MarkFlagRequired("port")

	var pacURL string
	autoCmd := &cobra.Command{
		Use:   "auto",
		Short: "Use a proxy auto-configuration (PAC) URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Manager().SetAutoProxy(sysproxy.AutoProxy{Enable: true, URL: pacURL}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Auto-config URL set to %s\n", pacURL)
			return nil
		},
	}
	autoCmd.Flags().StringVar(&pacURL, "url", "", "PAC script URL (required)")
	autoCmd.MarkFlagRequired("url")

	setCmd.AddCommand(manualCmd, autoCmd)
	return setCmd
}

func newOffCommand(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:     "off",
		Aliases: []string{"direct", "unset"},
		Short:   "Disable the system proxy",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Manager().SetManualProxy(sysproxy.ManualProxy{}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "System proxy disabled")
			return nil
		},
	}
}

func newProfileCommand(opts Options) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Apply proxy profiles from the configuration file",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List configured profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles := opts.Config().Profiles
			if len(profiles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No profiles configured")
				return nil
			}

			sorted := make([]config.ProfileConfig, len(profiles))
			copy(sorted, profiles)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMODE\tTARGET\tBYPASS")
			for _, p := range sorted {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Mode, profileTarget(p), p.Bypass)
			}
			return w.Flush()
		},
	}

	applyCmd := &cobra.Command{
		Use:   "apply [name]",
		Short: "Apply a configured profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.Config()
			profile, ok := cfg.Profile(args[0])
			if !ok {
				return fmt.Errorf("profile not found: %s", args[0])
			}
			state, err := profile.State()
			if err != nil {
				return err
			}
			if err := sysproxy.ApplyState(opts.Manager(), state); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied profile %s (%s)\n", profile.Name, state.Mode)
			return nil
		},
	}

	profileCmd.AddCommand(listCmd, applyCmd)
	return profileCmd
}

func newSnapshotCommand(opts Options) *cobra.Command {
	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save and restore the current proxy settings",
	}

	saveCmd := &cobra.Command{
		Use:   "save [file]",
		Short: "Write the current settings to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := sysproxy.Capture(opts.Manager())
			if err != nil {
				return err
			}
			if err := config.Save(args[0], &snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s settings to %s\n", snap.Mode(), args[0])
			return nil
		},
	}

	restoreCmd := &cobra.Command{
		Use:   "restore [file]",
		Short: "Apply settings previously written by 'snapshot save'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var snap sysproxy.Snapshot
			if err := config.LoadRaw(args[0], &snap); err != nil {
				return err
			}
			if err := snap.Restore(opts.Manager()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s settings from %s\n", snap.Mode(), args[0])
			return nil
		},
	}

	snapshotCmd.AddCommand(saveCmd, restoreCmd)
	return snapshotCmd
}

func newResolveCommand(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [host]",
		Short: "Show whether requests to a host use the proxy",
		Long: `Show how the current settings route requests to a host.

Manual settings are checked against the bypass list. Automatic settings are
reported as the PAC URL since the script is not evaluated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := sysproxy.Capture(opts.Manager())
			if err != nil {
				return err
			}
			route := pac.Resolve(snap, args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", route.Host, route.Result)
			return nil
		},
	}
}

func newPACCommand(opts Options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pac",
		Short: "Print the manual proxy settings as a PAC script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.Manager().GetManualProxy()
			if err != nil {
				return err
			}
			script := pac.Generate(p)

			if output == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), script)
				return err
			}
			if err := os.WriteFile(output, []byte(script), 0644); err != nil { //nolint:gosec // G306: PAC scripts are meant to be readable
				return fmt.Errorf("failed to write PAC script: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote PAC script to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	return cmd
}

func newServeCommand(opts Options) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API for reading and changing proxy settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.Config()
			if listen != "" {
				cfg.API.Listen = listen
			}
			if cfg.API.Listen == "" {
				return fmt.Errorf("no API listen address configured")
			}

			mgr := opts.Manager()
			var m *metrics.Metrics
			if cfg.Metrics.Enabled {
				m = metrics.New()
				mgr = metrics.Instrument(mgr, m)
			}

			server := api.New(api.Config{
				Manager:     mgr,
				Profiles:    cfg.Profiles,
				Metrics:     m,
				MetricsPath: cfg.Metrics.Path,
				Token:       cfg.API.Token,
			})

			ln, err := net.Listen("tcp", cfg.API.Listen)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", cfg.API.Listen, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return api.Serve(ctx, ln, server.Handler())
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides api.listen)")

	return cmd
}

func newTrayCommand(opts Options) *cobra.Command {
	var refresh time.Duration

	cmd := &cobra.Command{
		Use:   "tray",
		Short: "Switch between profiles from the system tray",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := trayEntries(opts.Config().Profiles)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tray.New(tray.Config{
				Manager: opts.Manager(),
				Entries: entries,
				Refresh: refresh,
			}).Run(ctx)
			return nil
		},
	}
	cmd.Flags().DurationVar(&refresh, "refresh", 5*time.Second, "how often to re-read the settings (0 disables)")

	return cmd
}

// trayEntries turns the configured profiles into menu entries. Direct
// profiles are skipped since the menu always offers Direct.
func trayEntries(profiles []config.ProfileConfig) ([]tray.Entry, error) {
	entries := make([]tray.Entry, 0, len(profiles))
	for _, p := range profiles {
		state, err := p.State()
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", p.Name, err)
		}
		if state.Mode == sysproxy.ModeDirect {
			continue
		}
		entries = append(entries, tray.Entry{Name: p.Name, State: state})
	}
	return entries, nil
}

func profileTarget(p config.ProfileConfig) string {
	switch p.Mode {
	case "manual":
		return p.Host + ":" + strconv.FormatUint(uint64(p.Port), 10)
	case "auto", "pac":
		return p.URL
	default:
		return "-"
	}
}

func printSnapshot(out io.Writer, snap sysproxy.Snapshot) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Mode:\t%s\n", snap.Mode())
	fmt.Fprintf(w, "Manual proxy:\t%s\n", enabledString(snap.Manual.Enable))
	if snap.Manual.Host != "" {
		fmt.Fprintf(w, "  Server:\t%s\n", snap.Manual.Server())
	}
	if snap.Manual.Bypass != "" {
		fmt.Fprintf(w, "  Bypass:\t%s\n", snap.Manual.Bypass)
	}
	fmt.Fprintf(w, "Auto-config:\t%s\n", enabledString(snap.Auto.Enable))
	if snap.Auto.URL != "" {
		fmt.Fprintf(w, "  URL:\t%s\n", snap.Auto.URL)
	}
	return w.Flush()
}

func writeSnapshotJSON(out io.Writer, snap sysproxy.Snapshot) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Mode string `json:"mode"`
		sysproxy.Snapshot
	}{Mode: snap.Mode().String(), Snapshot: snap})
}

func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
