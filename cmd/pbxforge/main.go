package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pbxforge/pbxforge/internal/batch"
	"github.com/pbxforge/pbxforge/pkg/config"
	"github.com/pbxforge/pbxforge/pkg/layers"
	"github.com/pbxforge/pbxforge/pkg/logger"
	"github.com/pbxforge/pbxforge/pkg/menuselect"
	"github.com/pbxforge/pbxforge/pkg/registry"
	"github.com/pbxforge/pbxforge/pkg/schema"
	"github.com/pbxforge/pbxforge/pkg/version"
)

var toolVersion = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	viper.SetEnvPrefix("PBXFORGE")
	viper.AutomaticEnv()
	viper.SetDefault("templates_dir", "templates")
	viper.SetDefault("output_dir", "configs/generated")
	viper.SetDefault("builds_file", "asterisk/supported-asterisk-builds.yml")
	viper.SetDefault("log_level", "info")

	root := &cobra.Command{
		Use:   "pbxforge",
		Short: "pbxforge - version-aware PBX build configuration resolver",
		Long: `pbxforge resolves the build configuration for any release of the PBX
product: which feature modules to compile, which packages to install, and
which distribution/variant template layer applies. Output feeds the
Dockerfile and build-script renderers.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.Config{
				Level:    viper.GetString("log_level"),
				Encoding: "console",
			})
		},
	}
	root.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pbxforge v%s\n", toolVersion)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newResolveCmd())
	root.AddCommand(newMenuselectCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newImageNameCmd())
	root.AddCommand(newListCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newResolveCmd() *cobra.Command {
	var templatesDir, variant, output, format, schemaPath string
	var features map[string]string

	cmd := &cobra.Command{
		Use:   "resolve <version> [distribution]",
		Short: "Resolve the build configuration for one release",
		Long: `Resolve the build configuration for a release. The distribution and
variant are inferred from the version when not given.

Example:
  pbxforge resolve 22.6.0 trixie --feature postgresql=false`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := parseFeatureFlags(features)
			if err != nil {
				return err
			}

			distribution := ""
			if len(args) > 1 {
				distribution = args[1]
			}

			store := layers.NewStore(templatesDirOrDefault(templatesDir), logger.Get())
			resolver := layers.NewResolver(store, logger.Get())

			cfg, err := resolver.Resolve(layers.Request{
				Version:      args[0],
				Distribution: distribution,
				Variant:      variant,
				Features:     flags,
			})
			if err != nil {
				return err
			}

			if schemaPath != "" {
				validator, err := schema.Compile(schemaPath)
				if err != nil {
					return err
				}
				if err := validator.Validate(cfg); err != nil {
					return err
				}
			}

			return writeConfig(cfg, output, format)
		},
	}

	cmd.Flags().StringVar(&templatesDir, "templates-dir", "", "Directory containing layer templates")
	cmd.Flags().StringVar(&variant, "variant", "", "Build variant (inferred from version when empty)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format (yaml or json)")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "JSON schema to validate the resolved config against")
	cmd.Flags().StringToStringVar(&features, "feature", nil, "Feature flag overrides, e.g. --feature postgresql=false")

	return cmd
}

func newMenuselectCmd() *cobra.Command {
	var features map[string]string

	cmd := &cobra.Command{
		Use:   "menuselect <version>",
		Short: "Print the menuselect command list for a release",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := parseFeatureFlags(features)
			if err != nil {
				return err
			}

			v, err := version.Parse(args[0])
			if err != nil {
				return err
			}

			sel, err := menuselect.Select(v, config.FeaturesFromMap(flags))
			if err != nil {
				return err
			}
			for _, command := range menuselect.Commands(sel) {
				fmt.Println(command)
			}
			return nil
		},
	}

	cmd.Flags().StringToStringVar(&features, "feature", nil, "Feature flag overrides, e.g. --feature ari=false")
	return cmd
}

func newBatchCmd() *cobra.Command {
	var templatesDir, buildsFile, outputDir, schemaPath string
	var workers int
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate configurations for all supported builds",
		Long: `Resolve every (version, distribution) pair of the supported-builds
registry in parallel. Per-item failures are reported in the summary and do
not abort the batch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.Get().With(zap.String("component", "batch"))

			reg, err := registry.Load(buildsFileOrDefault(buildsFile))
			if err != nil {
				return err
			}

			var validator *schema.Validator
			if schemaPath != "" {
				if validator, err = schema.Compile(schemaPath); err != nil {
					return err
				}
			}

			store := layers.NewStore(templatesDirOrDefault(templatesDir), log)
			resolver := layers.NewResolver(store, log)
			if outputDir == "" {
				outputDir = viper.GetString("output_dir")
			}
			runner := batch.NewRunner(resolver, &batch.FileSink{Dir: outputDir}, batch.Config{
				Workers:   workers,
				Validator: validator,
			}, log)

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			summary, err := runner.Run(ctx, reg)
			if err != nil {
				return err
			}

			fmt.Printf("Generated %d of %d configurations (%d failed)\n",
				summary.Succeeded, summary.Total, summary.Failed)
			for _, failure := range summary.Failures {
				fmt.Printf("  FAILED %s/%s: %v\n",
					failure.Pair.Version, failure.Pair.Distribution, failure.Err)
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d configurations failed", summary.Failed, summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&templatesDir, "templates-dir", "", "Directory containing layer templates")
	cmd.Flags().StringVar(&buildsFile, "builds-file", "", "Supported builds registry file")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory for generated configs")
	cmd.Flags().StringVar(&schemaPath, "schema", "", "JSON schema to validate each resolved config against")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Number of parallel resolution workers")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Batch timeout")

	return cmd
}

func newImageNameCmd() *cobra.Command {
	var buildsFile string

	cmd := &cobra.Command{
		Use:   "image-name <version>",
		Short: "Print the canonical image name for a supported version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Load(buildsFileOrDefault(buildsFile))
			if err != nil {
				return err
			}
			fmt.Println(reg.ImageName(args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&buildsFile, "builds-file", "", "Supported builds registry file")
	return cmd
}

func newListCmd() *cobra.Command {
	var buildsFile string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List supported builds in release order",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Load(buildsFileOrDefault(buildsFile))
			if err != nil {
				return err
			}

			byVersion := make(map[string][]string)
			for _, pair := range reg.Pairs() {
				byVersion[pair.Version] = append(byVersion[pair.Version], pair.Distribution)
			}
			for _, v := range reg.SortedVersions() {
				fmt.Printf("%s:", v)
				for _, dist := range byVersion[v] {
					fmt.Printf(" %s", dist)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&buildsFile, "builds-file", "", "Supported builds registry file")
	return cmd
}

// parseFeatureFlags converts --feature key=value pairs into booleans.
func parseFeatureFlags(raw map[string]string) (map[string]bool, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]bool, len(raw))
	for name, value := range raw {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid feature value %s=%s: %w", name, value, err)
		}
		out[name] = b
	}
	return out, nil
}

func writeConfig(cfg *config.Config, output, format string) error {
	var data []byte
	var err error
	switch format {
	case "yaml", "":
		data, err = yaml.Marshal(cfg)
	case "json":
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown format %q (yaml or json)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(output, data, 0o644)
}

func templatesDirOrDefault(dir string) string {
	if dir != "" {
		return dir
	}
	return viper.GetString("templates_dir")
}

func buildsFileOrDefault(path string) string {
	if path != "" {
		return path
	}
	return viper.GetString("builds_file")
}
