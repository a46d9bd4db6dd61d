package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GlobalFlags holds persistent flags shared by all subcommands
type GlobalFlags struct {
	ConfigPath string
}

// ScanFlags holds flags for the scan command
type ScanFlags struct {
	Dirs     []string
	MaxDepth int
	NoStore  bool
}

// UpFlags holds flags for the up command
type UpFlags struct {
	Project string
}

// RunFlags holds flags for the run command
type RunFlags struct {
	Project string
	Cwd     string
	CmdStr  string
	Title   string
}

// buildRoot creates the root command with its subcommands
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	scanFlags := &ScanFlags{}
	upFlags := &UpFlags{}
	runFlags := &RunFlags{}

	devscopeCommand := command{global: globalFlags}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createScanCommand(devscopeCommand, scanFlags),
		createUpCommand(devscopeCommand, upFlags),
		createRunCommand(devscopeCommand, runFlags),
	)
	return root
}

// createRootCommand creates the root command with minimal persistent flags
func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "devscope",
		Short: "Project discovery and dev-server orchestration tool",
		Long: `Devscope scans your workspace for project roots, classifies their
technologies, and supervises their dev-server processes.

Examples:
  devscope scan --dir ~/src                 # Discover projects under ~/src
  devscope up --project ~/src/webapp        # Start configured processes
  devscope run --cmd "npm run dev"          # Run an ad hoc process`,
	}

	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")

	return root
}

// createScanCommand creates the scan subcommand
func createScanCommand(devscopeCommand command, scanFlags *ScanFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Discover projects under the base directories",
		Long: `Scan the base directories for project roots and print each discovery
as a JSON event. The scan stops at project roots: nothing inside a
discovered project is searched for further projects.

Examples:
  devscope scan
  devscope scan --dir ~/src --dir ~/work --max-depth 2
  devscope scan --no-store                  # Discover without persisting`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return devscopeCommand.Scan(*scanFlags)
		},
	}

	cmd.Flags().StringArrayVar(&scanFlags.Dirs, "dir", nil, "base directory to scan (repeatable, overrides config)")
	cmd.Flags().IntVar(&scanFlags.MaxDepth, "max-depth", 0, "maximum search depth below each base directory")
	cmd.Flags().BoolVar(&scanFlags.NoStore, "no-store", false, "skip persisting discovered projects")

	return cmd
}

// createUpCommand creates the up subcommand
func createUpCommand(devscopeCommand command, upFlags *UpFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Start configured project processes and supervise them",
		Long: `Start every process configured under [[projects]] (or a single
project's processes with --project) and supervise them until
interrupted. Detected dev-server URLs are reported as they appear.

Examples:
  devscope up
  devscope up --project ~/src/webapp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return devscopeCommand.Up(*upFlags)
		},
	}

	cmd.Flags().StringVar(&upFlags.Project, "project", "", "start only this project path's processes")

	return cmd
}

// createRunCommand creates the run subcommand
func createRunCommand(devscopeCommand command, runFlags *RunFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an ad hoc process under supervision",
		Long: `Spawn a single command behind a pseudo-terminal and stream its output.
An empty --cmd spawns your shell.

Examples:
  devscope run --cmd "npm run dev" --cwd ~/src/webapp
  devscope run --cmd "python -m http.server" --title static`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return devscopeCommand.Run(*runFlags)
		},
	}

	cmd.Flags().StringVar(&runFlags.Project, "project", "", "project path to attribute the process to")
	cmd.Flags().StringVar(&runFlags.Cwd, "cwd", "", "working directory (defaults to home)")
	cmd.Flags().StringVar(&runFlags.CmdStr, "cmd", "", "command line to run (empty spawns a shell)")
	cmd.Flags().StringVar(&runFlags.Title, "title", "", "display name for the process")

	return cmd
}
