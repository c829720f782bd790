package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ormasoftchile/adbind/pkg/dsconfigad"
	"github.com/ormasoftchile/adbind/pkg/schema"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	// .env never overrides variables already set in the environment.
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	toolPath  string
	scenario  string
	verbose   bool
	logFormat string
	logger    = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:           "adbind",
	Short:         "Reconcile a macOS host's Active Directory binding",
	Long:          "adbind reads the AD plugin configuration with dsconfigad, compares it with a declared manifest and issues the single invocation that moves the host toward it.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(os.Stderr, logFormat, verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

// --- validate ---

var validateCmd = &cobra.Command{
	Use:   "validate [manifest.yaml]",
	Short: "Validate a binding manifest against the schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("✓ %s is valid (ensure %s, %d properties)\n", m.Binding.Name, m.Binding.EnsureOrDefault(), len(m.Binding.Properties))
	return nil
}

// loadManifest validates path, printing warnings and errors the way
// validate does.
func loadManifest(path string) (*schema.Manifest, error) {
	m, errs := schema.ValidateFile(path)
	var failed []*schema.ValidationError
	for _, e := range errs {
		if e.Severity == "warning" {
			fmt.Fprintf(os.Stderr, "  ⚠ [%s] %s\n", e.Phase, e.Message)
			if e.Path != "" {
				fmt.Fprintf(os.Stderr, "    at: %s\n", e.Path)
			}
			continue
		}
		failed = append(failed, e)
	}
	if len(failed) > 0 {
		fmt.Fprintf(os.Stderr, "Validation failed: %d error(s)\n\n", len(failed))
		for i, e := range failed {
			fmt.Fprintf(os.Stderr, "  %d. [%s] %s\n", i+1, e.Phase, e.Message)
			if e.Path != "" {
				fmt.Fprintf(os.Stderr, "     at: %s\n", e.Path)
			}
		}
		return nil, fmt.Errorf("validation failed with %d error(s)", len(failed))
	}
	return m, nil
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Schema operations",
}

var schemaExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the manifest JSON Schema to stdout",
	RunE:  runSchemaExport,
}

func runSchemaExport(cmd *cobra.Command, args []string) error {
	data, err := schema.GenerateJSONSchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	if !json.Valid(data) {
		return fmt.Errorf("generated schema is not valid JSON")
	}
	fmt.Println(string(data))
	return nil
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("adbind %s (build: %s)\n", version, commit)
	},
}

func init() {
	defaultTool := os.Getenv("ADBIND_TOOL")
	if defaultTool == "" {
		defaultTool = dsconfigad.DefaultPath
	}
	rootCmd.PersistentFlags().StringVar(&toolPath, "tool", defaultTool, "Path to dsconfigad (env ADBIND_TOOL)")
	rootCmd.PersistentFlags().StringVar(&scenario, "scenario", "", "Answer dsconfigad calls from a replay scenario YAML instead of running it")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug detail")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format on stderr: text or json")

	schemaCmd.AddCommand(schemaExportCmd)

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(propertiesCmd)
	rootCmd.AddCommand(versionCmd)
}
