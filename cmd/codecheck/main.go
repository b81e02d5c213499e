package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fahmitech/codecheck/pkg/batch"
	"github.com/fahmitech/codecheck/pkg/config"
	"github.com/fahmitech/codecheck/pkg/grammar"
	"github.com/fahmitech/codecheck/pkg/logger"
	"github.com/fahmitech/codecheck/pkg/types"
	"github.com/fahmitech/codecheck/pkg/validator"
)

var (
	rulesText       string
	rulesFile       string
	profileName     string
	outputPath      string
	reportPath      string
	separator       string
	strictSeparator bool
	logLevel        string
	logFormat       string
	rulesAsText     bool

	log = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// errInvalidCode makes `line` exit non-zero without printing the verdict twice
var errInvalidCode = errors.New("code is invalid")

var rootCmd = &cobra.Command{
	Use:           "codecheck",
	Short:         "Validate concatenated code lists against an application group grammar",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		applyConfigDefaults(cmd, cfg)

		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		format, err := logger.ParseFormat(logFormat)
		if err != nil {
			return err
		}
		log = logger.New(logger.WithLevel(level), logger.WithFormat(format), logger.WithOutput(cmd.ErrOrStderr()))
		return nil
	},
}

// applyConfigDefaults fills flags the user did not set from the environment config
func applyConfigDefaults(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, apply func()) {
		if f := cmd.Flags().Lookup(name); f == nil || !f.Changed {
			apply()
		}
	}
	set("output", func() { outputPath = cfg.Output })
	set("separator", func() { separator = cfg.Separator })
	set("strict-separator", func() { strictSeparator = cfg.StrictSeparator })
	set("log-level", func() { logLevel = cfg.LogLevel })
	set("log-format", func() { logFormat = cfg.LogFormat })
}

var checkCmd = &cobra.Command{
	Use:   "check [codes.txt]",
	Short: "Validate every line of a file and append verdicts to the output file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := buildValidator()
		if err != nil {
			return err
		}

		report, err := batch.Run(cmd.Context(), batch.Request{
			Validator:  v,
			InputPath:  args[0],
			OutputPath: outputPath,
			Logger:     log,
		})
		if err != nil {
			return err
		}

		if reportPath != "" {
			if err := report.WriteFile(reportPath); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "[INFO] Checked %d lines: %d OK, %d invalid. Results appended to %s\n",
			report.Total, report.Valid, report.Invalid, outputPath)
		return nil
	},
}

var lineCmd = &cobra.Command{
	Use:   "line [code]",
	Short: "Validate a single code list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := buildValidator()
		if err != nil {
			return err
		}

		if err := v.Validate(args[0]); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), err.Error())
			return errInvalidCode
		}
		fmt.Fprintln(cmd.OutOrStdout(), batch.VerdictOK)
		return nil
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Parse the grammar and print the resulting rule sequence",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := loadRules()
		if err != nil {
			return err
		}

		if rulesAsText {
			fmt.Fprintln(cmd.OutOrStdout(), grammar.Format(rules))
			return nil
		}

		out, err := yaml.Marshal(struct {
			Rules []types.Rule `yaml:"rules"`
		}{rules})
		if err != nil {
			return fmt.Errorf("failed to marshal rules: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func buildValidator() (*validator.Validator, error) {
	rules, err := loadRules()
	if err != nil {
		return nil, err
	}

	opts := []validator.Option{validator.WithSeparator(separator)}
	if strictSeparator {
		opts = append(opts, validator.WithStrictSeparator())
	}
	return validator.New(rules, opts...)
}

func loadRules() ([]types.Rule, error) {
	text, err := loadGrammar(rulesText, rulesFile, profileName)
	if err != nil {
		return nil, err
	}

	rules, err := grammar.Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("invalid grammar: %w", err)
	}
	return rules, nil
}

func loadGrammar(text, path, profile string) (types.Grammar, error) {
	switch {
	case text != "" && path != "":
		return "", fmt.Errorf("use either --rules or --rules-file, not both")
	case text != "":
		if profile != "" {
			return "", fmt.Errorf("--profile requires --rules-file")
		}
		return types.Grammar(text), nil
	case path != "":
		f, err := loadRulesFile(path)
		if err != nil {
			return "", err
		}
		return f.SelectGrammar(profile)
	default:
		return "", fmt.Errorf("missing grammar: set --rules or --rules-file")
	}
}

func loadRulesFile(path string) (*types.RulesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var f types.RulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &f, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesText, "rules", "", "Grammar text, e.g. \"1234 - 7, 123 - 5+\"")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules-file", "", "Path to a YAML rules file")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "Grammar profile name in the rules file")
	rootCmd.PersistentFlags().StringVar(&separator, "separator", validator.DefaultSeparator, "Variable-length group separator")
	rootCmd.PersistentFlags().BoolVar(&strictSeparator, "strict-separator", false, "Require a separator after every variable-length group except the last")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text|json)")

	checkCmd.Flags().StringVarP(&outputPath, "output", "o", "checkedCodes.txt", "Verdict file, appended to")
	checkCmd.Flags().StringVar(&reportPath, "report", "", "Write a YAML run report to this path")
	rootCmd.AddCommand(checkCmd)

	rootCmd.AddCommand(lineCmd)

	rulesCmd.Flags().BoolVar(&rulesAsText, "text", false, "Print canonical grammar text instead of YAML")
	rootCmd.AddCommand(rulesCmd)
}

func main() {
	// Setup context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errInvalidCode) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		cancel()
		os.Exit(1)
	}
}
