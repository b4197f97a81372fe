package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/rbx-ripper/internal/extract"
)

var (
	outputFlag string
	quietFlag  bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <input>",
	Short: "Extract a place or model file into a directory tree",
	Long: `Extract writes one folder per object of the input document.

Each folder holds:
  - properties.json  every property of the object as a string, plus ClassName
  - script.lua       the Source property, verbatim (scripts only)

Folders are named "<Name> [<ClassName>]", or just "<Name>" when the name
equals the class. Siblings with the same name get " (1)", " (2)", ...

Excluding an object also excludes everything below it.

Examples:
  # Extract next to the input (place_extracted/)
  rbxrip extract place.rbxlx

  # Choose the output folder and skip scripts
  rbxrip extract place.rbxlx -o out --exclude-scripts

  # Skip Workspace and some classes
  rbxrip extract place.rbxlx --exclude-workspace --exclude-classes "Part, MeshPart, Decal"

  # Skip classes by pattern
  rbxrip extract place.rbxlx --exclude-pattern "*Gui" --exclude-pattern "*Sound*"
`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// filterFlagKeys maps config keys to the filter flags shared by extract and count.
var filterFlagKeys = map[string]string{
	"filters.exclude_workspace": "exclude-workspace",
	"filters.exclude_scripts":   "exclude-scripts",
	"filters.exclude_classes":   "exclude-classes",
	"filters.exclude_patterns":  "exclude-pattern",
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("exclude-workspace", false, "Skip the object named Workspace and everything below it")
	cmd.Flags().Bool("exclude-scripts", false, "Skip Script, LocalScript and ModuleScript objects")
	cmd.Flags().StringSlice("exclude-classes", nil, "Comma separated class names to skip (case-insensitive)")
	cmd.Flags().StringArray("exclude-pattern", nil, "Glob pattern over class names to skip (repeatable)")
}

func init() {
	rootCmd.AddCommand(extractCmd)
	addFilterFlags(extractCmd)
	extractCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory (default: <input>_extracted)")
	extractCmd.Flags().Int("workers", 0, "Number of parallel workers (0 = one per CPU)")
	extractCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bar and non-error output")
}

func runExtract(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interrupt signals gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted! Cancelling extraction...")
			cancel()
		case <-ctx.Done():
		}
	}()

	keys := map[string]string{"extract.workers": "workers"}
	for k, v := range filterFlagKeys {
		keys[k] = v
	}
	cfg, err := loadConfig(cmd, keys)
	if err != nil {
		return err
	}

	settings, err := cfg.ToSettings()
	if err != nil {
		return err
	}

	input := args[0]
	if ext := strings.ToLower(filepath.Ext(input)); ext != ".rbxlx" && ext != ".rbxmx" {
		log.Warn().Str("input", input).Msg("input does not look like an XML place or model file")
	}

	output := outputFlag
	if output == "" {
		output = extract.DefaultOutputDir(input)
	}

	progress := NewCLIProgressReporter(cmd.OutOrStdout(), quietFlag)

	stats, err := extract.Run(ctx, extract.Request{
		Input:    input,
		Output:   output,
		Settings: settings,
		Options:  cfg.ToOptions(),
	}, progress)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("extraction cancelled")
		}
		return fmt.Errorf("extraction failed: %w", err)
	}

	if !quietFlag && stats.Total > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "  Objects: %s\n", formatNumber(stats.Objects))
		fmt.Fprintf(cmd.OutOrStdout(), "  Scripts: %s\n", formatNumber(stats.Scripts))
		fmt.Fprintf(cmd.OutOrStdout(), "  Output:  %s\n", output)
	}

	return nil
}
