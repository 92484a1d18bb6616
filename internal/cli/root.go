// Package cli wires the cobra command: flag validation, input loading,
// diffing, policy evaluation, rendering, and exit-code mapping.
//
// Exit codes: 0 success, 1 input or config error, 2 license policy
// violation, 3 fail-on condition. License violations take precedence.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rezmoss/sbomdiff/internal/diff"
	"github.com/rezmoss/sbomdiff/internal/output"
	"github.com/rezmoss/sbomdiff/internal/policy"
	"github.com/rezmoss/sbomdiff/internal/sbom"
	"github.com/rezmoss/sbomdiff/internal/tui"
	"github.com/rezmoss/sbomdiff/internal/version"
)

type options struct {
	format        string
	outputFormat  string
	only          string
	denyLicenses  []string
	allowLicenses []string
	failOn        []string
	policyFile    string
	summary       bool
	quiet         bool
	interactive   bool
}

// exitError carries a policy exit code through cobra's error return.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// NewRootCmd builds the sbom-diff command. Diagnostics go to log;
// rendered output goes to the command's stdout writer.
func NewRootCmd(log *zap.SugaredLogger) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "sbom-diff [flags] <old-file> <new-file>",
		Short: "Compare two SBOMs and report the differences",
		Long: `sbom-diff compares two Software Bills of Materials (CycloneDX 1.4+ JSON
or SPDX 2.3 JSON) and reports added, removed, and changed components as
well as dependency-edge changes. License gates and fail-on conditions
turn the diff into a CI/CD gate via the exit code.

A file path of - reads that side from standard input (at most one side).`,
		Version:       version.Short(),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args, log)
		},
	}

	cmd.SetVersionTemplate(version.Info() + "\n")

	flags := cmd.Flags()
	flags.StringVarP(&opts.format, "format", "f", "auto", "Input format: auto, cyclonedx, spdx")
	flags.StringVarP(&opts.outputFormat, "output", "o", "text", "Output format: text, markdown, json")
	flags.StringVar(&opts.only, "only", "", "Comma-separated field filter: version,license,supplier,purl,hashes,deps")
	flags.StringArrayVar(&opts.denyLicenses, "deny-license", nil, "Fail (exit 2) when this license appears in the new SBOM (repeatable)")
	flags.StringArrayVar(&opts.allowLicenses, "allow-license", nil, "Fail (exit 2) when a license outside this set appears in the new SBOM (repeatable)")
	flags.StringArrayVar(&opts.failOn, "fail-on", nil, "Fail (exit 3) on a condition: added-components, missing-hashes, deps (repeatable)")
	flags.StringVar(&opts.policyFile, "policy", "", "Load license and fail-on rules from a JSON or YAML policy file")
	flags.BoolVar(&opts.summary, "summary", false, "Print only change counts")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress all non-error output")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "Browse the diff in an interactive terminal UI")

	return cmd
}

func run(cmd *cobra.Command, opts *options, args []string, log *zap.SugaredLogger) error {
	format, err := sbom.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	renderer, err := output.New(opts.outputFormat)
	if err != nil {
		return err
	}

	// nil means all fields; --only with an empty value means none.
	var fields []diff.Field
	if cmd.Flags().Changed("only") {
		fields, err = diff.ParseFields(opts.only)
		if err != nil {
			return err
		}
		if fields == nil {
			fields = []diff.Field{}
		}
	}

	cfg := policy.Config{
		DenyLicenses:  opts.denyLicenses,
		AllowLicenses: opts.allowLicenses,
	}
	for _, s := range opts.failOn {
		cond, err := policy.ParseCondition(s)
		if err != nil {
			return err
		}
		cfg.FailOn = append(cfg.FailOn, cond)
	}
	if opts.policyFile != "" {
		fileCfg, err := policy.LoadFile(opts.policyFile)
		if err != nil {
			return err
		}
		cfg = cfg.Merge(fileCfg)
	}

	oldPath, newPath := args[0], args[1]
	if oldPath == "-" && newPath == "-" {
		return errors.New("only one input may be read from stdin")
	}

	oldSbom, err := loadSbom(cmd.InOrStdin(), oldPath, format)
	if err != nil {
		return err
	}
	newSbom, err := loadSbom(cmd.InOrStdin(), newPath, format)
	if err != nil {
		return err
	}

	oldSbom.Normalize()
	newSbom.Normalize()

	d := diff.Compare(oldSbom, newSbom, fields)
	outcome := policy.Evaluate(cfg, &d, newSbom)

	if opts.interactive {
		if err := tui.Run(&d); err != nil {
			return fmt.Errorf("interactive mode: %w", err)
		}
	} else if !opts.quiet {
		w := cmd.OutOrStdout()
		if opts.summary {
			err = output.RenderSummary(&d, w)
		} else {
			err = renderer.Render(&d, w)
		}
		if err != nil {
			return fmt.Errorf("rendering diff: %w", err)
		}
	}

	if !outcome.OK() {
		for _, line := range outcome.Details {
			log.Error(line)
		}
		return &exitError{code: outcome.ExitCode()}
	}

	return nil
}

// loadSbom reads one side from a file or, for "-", from stdin.
func loadSbom(stdin io.Reader, path string, format sbom.Format) (*sbom.Sbom, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	s, err := sbom.Read(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// NewLogger builds the stderr diagnostic logger: console encoding,
// message-only lines so diagnostics stay grep-friendly in CI logs.
func NewLogger() *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.LevelKey = ""
	encCfg.NameKey = ""
	encCfg.CallerKey = ""
	encCfg.StacktraceKey = ""
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.InfoLevel),
		Encoding:         "console",
		EncoderConfig:    encCfg,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// Execute runs the command and returns the process exit code.
func Execute() int {
	log := NewLogger()
	defer func() { _ = log.Sync() }()

	cmd := NewRootCmd(log)
	if err := cmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		log.Errorf("%v", err)
		return 1
	}
	return 0
}
