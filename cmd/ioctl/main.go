// Command ioctl loads a manifest of component registrations, builds a
// container from it, and resolves a named service, printing its value.
// With -v, the container's diagnostics listener logs a resolution trace.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	ioc "github.com/corewell/ioc"
	"github.com/corewell/ioc/diagzap"
	"github.com/corewell/ioc/manifest"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ioctl",
		Short: "Inspect and exercise an ioc container built from a manifest",
	}
	root.AddCommand(newResolveCmd())
	root.AddCommand(newListCmd())
	return root
}

func newResolveCmd() *cobra.Command {
	var (
		manifestPath string
		envPrefix    string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <entry-name>",
		Short: "Build a container from a manifest and resolve one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			m, err := manifest.Load(manifestPath, envPrefix)
			if err != nil {
				return err
			}
			entry, ok := m.ByName(name)
			if !ok {
				return fmt.Errorf("ioctl: no manifest entry named %q", name)
			}

			logger := zap.NewNop()
			if verbose {
				var err error
				logger, err = zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("ioctl: failed to build logger: %w", err)
				}
			}
			defer logger.Sync() //nolint:errcheck

			builder := ioc.NewBuilder(ioc.WithDiagnostics(diagzap.New(logger)))

			for _, e := range m.Entries {
				reg, err := e.Registration()
				if err != nil {
					return fmt.Errorf("ioctl: entry %q: %w", e.Name, err)
				}
				if err := builder.Register(reg); err != nil {
					return fmt.Errorf("ioctl: registering %q: %w", e.Name, err)
				}
			}

			container, err := builder.Build()
			if err != nil {
				return fmt.Errorf("ioctl: build: %w", err)
			}
			defer container.Dispose() //nolint:errcheck

			value, err := container.Resolve(entry.Service())
			if err != nil {
				return fmt.Errorf("ioctl: resolve %q: %w", name, err)
			}

			fmt.Printf("%s = %v\n", name, value)
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "ioc.yaml", "path to the manifest file")
	cmd.Flags().StringVar(&envPrefix, "env-prefix", "", "environment variable prefix for manifest overrides")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print a resolution trace")
	return cmd
}

func newListCmd() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the entries declared in a manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(manifestPath, "")
			if err != nil {
				return err
			}
			for _, e := range m.Entries {
				fmt.Printf("%s\tlifetime=%s\tshared=%v\tfixed=%v\n", e.Name, e.Lifetime, e.Shared, e.Fixed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "ioc.yaml", "path to the manifest file")
	return cmd
}
