// Command inplace translates HTML pages in place, inserting each
// translation next to its source element, and serves the translation relay.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ZaguanLabs/inplace"
	"github.com/spf13/cobra"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = inplace.Version
	commit    = inplace.GitCommit
	buildDate = inplace.BuildDate
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions are flags shared by every subcommand.
type globalOptions struct {
	configFile string
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := newRootCmd(&globalOptions{stdin: stdin, stdout: stdout, stderr: stderr})
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd(g *globalOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   inplace.Name,
		Short: inplace.Description,
		Long: `inplace finds the text blocks of an HTML page, sends each one to a
translation relay and writes the translation into a sibling element right
after the original, leaving a bilingual page.

Services:
  - tencent   plain text (Tencent Machine Translation)
  - google    markup preserving (Google Cloud Translation)
  - openai    generative, needs --credential (OpenAI completions)

Configuration is read from --config, then INPLACE_* environment variables,
then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetIn(g.stdin)
	root.SetOut(g.stdout)
	root.SetErr(g.stderr)
	root.PersistentFlags().StringVar(&g.configFile, "config", "", "Config file (yaml, json or toml)")
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newTranslateCmd(g),
		newDiffCmd(g),
		newRelayCmd(g),
		newVersionCmd(g),
	)
	return root
}

func newVersionCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(g.stdout, "%s %s\n", inplace.Name, version)
			if commit != "unknown" && commit != "" {
				fmt.Fprintf(g.stdout, "  commit:  %s\n", commit)
			}
			if buildDate != "unknown" && buildDate != "" {
				fmt.Fprintf(g.stdout, "  built:   %s\n", buildDate)
			}
			return nil
		},
	}
}
