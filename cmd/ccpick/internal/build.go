package internal

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goplus/ccpick/internal/build"
	"github.com/goplus/ccpick/internal/session"
	"github.com/goplus/ccpick/internal/toolchain"
)

var (
	buildCompiler string
	buildOutput   string
	buildRoot     string
	buildShell    string
	buildMin      string
	buildSources  []string
	buildLibs     []string
	buildDryRun   bool
)

var buildCmd = &cobra.Command{
	Use:   "build <project-dir>",
	Short: "Compile the selected sources of a project",
	Long: `Build compiles the sources of the project directory (all of them unless
--source is given) into one output, adding -I for every selected header and
-L/-l for every selected library found under the library root.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildCompiler, "compiler", "c", "", "Compiler to run (default $CCPICK_COMPILER or g++)")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Output path (default <project-dir>/output)")
	buildCmd.Flags().StringVar(&buildRoot, "root", "", "Library root to scan (default $CCPICK_LIBROOT or /usr)")
	buildCmd.Flags().StringVar(&buildShell, "shell", "", "Run the command through this shell with -c (default $CCPICK_SHELL, none)")
	buildCmd.Flags().StringVar(&buildMin, "min-version", "", "Refuse compilers older than this version (default $CCPICK_MIN_COMPILER)")
	buildCmd.Flags().StringArrayVarP(&buildSources, "source", "s", nil, "Source file to compile, relative to the project (repeatable)")
	buildCmd.Flags().StringArrayVarP(&buildLibs, "lib", "l", nil, "Header or library path from the library root (repeatable)")
	buildCmd.Flags().BoolVarP(&buildDryRun, "dry-run", "n", false, "Print the command without running it")
	rootCmd.AddCommand(buildCmd)
}

type buildOptions struct {
	compiler   string
	output     string
	root       string
	shell      string
	minVersion string
	sources    []string
	libs       []string
	dryRun     bool
}

func runBuild(cmd *cobra.Command, args []string) error {
	c := config()
	opts := buildOptions{
		compiler:   firstNonEmpty(buildCompiler, c.Compiler),
		output:     buildOutput,
		root:       firstNonEmpty(buildRoot, c.LibraryRoot),
		shell:      firstNonEmpty(buildShell, c.Shell),
		minVersion: firstNonEmpty(buildMin, c.MinCompiler),
		sources:    buildSources,
		libs:       buildLibs,
		dryRun:     buildDryRun,
	}
	return doBuild(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts)
}

func doBuild(ctx context.Context, stdout, stderr io.Writer, dir string, opts buildOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	runner := &build.Runner{
		Shell: opts.shell,
		Env:   map[string]string{"LC_ALL": "C"},
	}
	s := session.New(session.WithRunner(runner))

	if _, err := s.SelectProject(dir); err != nil {
		return fmt.Errorf("failed to read project: %w", err)
	}
	if len(opts.sources) > 0 {
		if err := s.SetSourceSelection(opts.sources); err != nil {
			return err
		}
	}
	// the library root is only scanned when something from it is wanted
	if len(opts.libs) > 0 {
		if _, err := s.ScanLibraries(opts.root); err != nil {
			return fmt.Errorf("failed to scan libraries: %w", err)
		}
		if err := s.SetLibrarySelection(opts.libs); err != nil {
			return err
		}
	}

	if opts.dryRun {
		cmd, err := s.Command(opts.compiler, opts.output)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, cmd)
		return err
	}

	if opts.minVersion != "" {
		if err := checkCompiler(ctx, opts.compiler, opts.minVersion); err != nil {
			return err
		}
	}

	res, err := s.RequestBuild(ctx, opts.compiler, opts.output)
	if err != nil {
		return fmt.Errorf("failed to build: %w", err)
	}
	if err := printResult(stdout, stderr, res); err != nil {
		return err
	}
	if res.Failed() {
		return &exitError{code: res.ExitCode}
	}
	return nil
}

func checkCompiler(ctx context.Context, compiler, minVersion string) error {
	info, err := toolchain.Probe(ctx, compiler)
	if err != nil {
		return fmt.Errorf("failed to probe %s: %w", compiler, err)
	}
	return requireVersion(info, minVersion)
}

// printResult writes the compiler output verbatim, then the hints.
func printResult(stdout, stderr io.Writer, res *build.Result) error {
	if format == "yaml" {
		return writeYAML(stdout, res)
	}
	if _, err := io.WriteString(stdout, res.Stdout); err != nil {
		return err
	}
	if _, err := io.WriteString(stderr, res.Stderr); err != nil {
		return err
	}
	for _, h := range res.Hints {
		if _, err := fmt.Fprintf(stderr, "[!] %s\n", h); err != nil {
			return err
		}
	}
	return nil
}
