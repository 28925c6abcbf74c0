package internal

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goplus/ccpick/pkgs/library"
	"github.com/goplus/ccpick/pkgs/project"
)

var (
	libsRoot   string
	libsFilter string
)

var libsCmd = &cobra.Command{
	Use:   "libs",
	Short: "List headers and libraries under the library root",
	Long:  `Libs scans the library root recursively for .h, .a and .so files.`,
	Args:  cobra.NoArgs,
	RunE:  runLibs,
}

var sourcesCmd = &cobra.Command{
	Use:   "sources <project-dir>",
	Short: "List the C/C++ sources of a project directory",
	Long:  `Sources lists the .c and .cpp files directly inside the project directory.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSources,
}

func init() {
	libsCmd.Flags().StringVar(&libsRoot, "root", "", "Library root to scan (default $CCPICK_LIBROOT or /usr)")
	libsCmd.Flags().StringVar(&libsFilter, "filter", "", "Only list paths containing this text (case-insensitive)")
	rootCmd.AddCommand(libsCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runLibs(cmd *cobra.Command, args []string) error {
	root := firstNonEmpty(libsRoot, config().LibraryRoot)
	entries, err := library.Scan(root)
	if err != nil {
		return fmt.Errorf("failed to scan libraries: %w", err)
	}
	entries = library.Filter(entries, libsFilter)
	library.Sort(entries)
	return printEntries(cmd.OutOrStdout(), entries)
}

func runSources(cmd *cobra.Command, args []string) error {
	sources, err := project.ListSources(args[0])
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}
	return printSources(cmd.OutOrStdout(), sources)
}

func printEntries(w io.Writer, entries []library.Entry) error {
	if format == "yaml" {
		return writeYAML(w, entries)
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%-6s %s\n", e.Kind, e.Path); err != nil {
			return err
		}
	}
	return nil
}

func printSources(w io.Writer, sources []project.SourceFile) error {
	if format == "yaml" {
		return writeYAML(w, sources)
	}
	for _, s := range sources {
		mark := " "
		if s.Selected {
			mark = "x"
		}
		if _, err := fmt.Fprintf(w, "[%s] %s\n", mark, s.Name); err != nil {
			return err
		}
	}
	return nil
}
