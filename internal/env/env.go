package env

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultCompiler    = "g++"
	DefaultLibraryRoot = "/usr"
)

// Config holds the defaults a session starts from. Command-line flags
// override every field.
type Config struct {
	Compiler    string // CCPICK_COMPILER
	LibraryRoot string // CCPICK_LIBROOT
	Shell       string // CCPICK_SHELL; empty runs the compiler without a shell
	MinCompiler string // CCPICK_MIN_COMPILER
}

// Load reads the configuration from the environment, after loading a .env
// file from the working directory if one exists.
func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		Compiler:    firstNonEmpty(os.Getenv("CCPICK_COMPILER"), DefaultCompiler),
		LibraryRoot: firstNonEmpty(os.Getenv("CCPICK_LIBROOT"), DefaultLibraryRoot),
		Shell:       strings.TrimSpace(os.Getenv("CCPICK_SHELL")),
		MinCompiler: strings.TrimSpace(os.Getenv("CCPICK_MIN_COMPILER")),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
