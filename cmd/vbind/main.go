package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	verrors "github.com/vango-go/vbind/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦┌┐ ┬┌┐┌┌┬┐
  ╚╗╔╝├┴┐││││ ││
   ╚╝ └─┘┴┘└┘─┴┘
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		verrors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "vbind",
		Short: "Two-way data binding for HTML templates",
		Long: `vbind binds HTML templates to reactive data.

Templates use {{ path }} interpolation, v-model, v-text and
v-on:<event> / @<event> directives. An app is a template plus a YAML
manifest holding its data, computed properties and methods.

  • render   compile an app, replay events, print the HTML
  • serve    serve the app live over WebSocket
  • version  print build information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ./vbind.yaml)")

	rootCmd.AddCommand(
		renderCmd(&configPath),
		serveCmd(&configPath),
		versionCmd(),
	)
	return rootCmd
}

// printBanner prints the vbind ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
