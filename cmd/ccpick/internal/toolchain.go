package internal

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goplus/ccpick/internal/toolchain"
)

var (
	toolchainCompiler string
	toolchainMin      string
)

var toolchainCmd = &cobra.Command{
	Use:   "toolchain",
	Short: "Show the compiler ccpick would run",
	Long:  `Toolchain locates the compiler on PATH and prints its version.`,
	Args:  cobra.NoArgs,
	RunE:  runToolchain,
}

func init() {
	toolchainCmd.Flags().StringVarP(&toolchainCompiler, "compiler", "c", "", "Compiler to probe (default $CCPICK_COMPILER or g++)")
	toolchainCmd.Flags().StringVar(&toolchainMin, "min-version", "", "Fail if the compiler is older than this version")
	rootCmd.AddCommand(toolchainCmd)
}

func runToolchain(cmd *cobra.Command, args []string) error {
	compiler := firstNonEmpty(toolchainCompiler, config().Compiler)
	return showToolchain(cmd.Context(), cmd.OutOrStdout(), compiler, firstNonEmpty(toolchainMin, config().MinCompiler))
}

func showToolchain(ctx context.Context, w io.Writer, compiler, minVersion string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	info, err := toolchain.Probe(ctx, compiler)
	if err != nil {
		return fmt.Errorf("failed to probe %s: %w", compiler, err)
	}
	if format == "yaml" {
		err = writeYAML(w, info)
	} else {
		_, err = fmt.Fprintf(w, "%s %s (%s)\n", info.Compiler, info.Version, info.Path)
	}
	if err != nil || minVersion == "" {
		return err
	}
	return requireVersion(info, minVersion)
}

func requireVersion(info toolchain.Info, minVersion string) error {
	ok, err := info.AtLeast(minVersion)
	if err != nil {
		return fmt.Errorf("bad minimum version: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s is version %s, need %s or newer", info.Compiler, info.Version, minVersion)
	}
	return nil
}
