package internal

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goplus/ccpick/internal/env"
)

var (
	verbose bool
	format  string
	cfg     *env.Config
)

var rootCmd = &cobra.Command{
	Use:   "ccpick",
	Short: "ccpick compiles a C/C++ project against hand-picked libraries",
	Long: `ccpick lists the sources of a project directory and the headers and libraries
found under a library root, turns a selection of both into a single compiler
invocation, runs it and explains unresolved symbols.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetOutputLevel(log.Ldebug)
		} else {
			log.SetOutputLevel(log.Linfo)
		}
		if format != "text" && format != "yaml" {
			return fmt.Errorf("unknown format %q, want text or yaml", format)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "Output format: text or yaml")
}

// exitError carries the compiler's exit status out of a failed build.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cfg = env.Load()
	err := rootCmd.Execute()
	if err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		log.Fatal(err)
	}
}

func config() *env.Config {
	if cfg == nil {
		cfg = env.Load()
	}
	return cfg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
