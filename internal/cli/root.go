package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/veriguard/veriguard/internal/observability"
	"github.com/veriguard/veriguard/internal/observability/logging"
	otelobs "github.com/veriguard/veriguard/internal/observability/otel"
	"github.com/veriguard/veriguard/internal/observability/receipt"
	"github.com/veriguard/veriguard/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "veriguard",
	Short: "Compliance gate for engineering tool reports",
	Long: `veriguard: requirement and waiver classification for tool reports.
Turns raw findings into auditable pass/fail verdicts for CI.`,
	Version:           version.BuildVersion(),
	PersistentPreRunE: setupObservability,
	PersistentPostRun: teardownObservability,
}

var (
	logFormatFlag   string
	logLevelFlag    string
	logOutputFlag   string
	otelFlag        bool
	otelEndpoint    string
	otelProtocol    string
	otelInsecure    bool
	otelSampleRatio float64
	receiptPathFlag string
	receiptModeFlag string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logFormatFlag, "log-format", "pretty", "Log format: pretty or jsonl")
	pf.StringVar(&logLevelFlag, "log-level", "info", "Log level: debug, info, warn, or error")
	pf.StringVar(&logOutputFlag, "log-output", "stderr", "Log output: stderr or a file path")
	pf.BoolVar(&otelFlag, "otel", false, "Enable OpenTelemetry tracing")
	pf.StringVar(&otelEndpoint, "otel-endpoint", "", "OTLP endpoint (defaults per protocol)")
	pf.StringVar(&otelProtocol, "otel-protocol", otelobs.ProtocolHTTP, "OTLP protocol: otlphttp or otlpgrpc")
	pf.BoolVar(&otelInsecure, "otel-insecure", false, "Allow insecure OTLP connections")
	pf.Float64Var(&otelSampleRatio, "otel-sample-ratio", 1.0, "Trace sample ratio (0..1)")
	pf.StringVar(&receiptPathFlag, "receipt", "", "Write an audit receipt to this path")
	pf.StringVar(&receiptModeFlag, "receipt-mode", "overwrite", "Receipt write mode: overwrite or append")

	rootCmd.AddCommand(GetCheckCmd())
	rootCmd.AddCommand(GetValidateCmd())
	rootCmd.AddCommand(GetPolicyCmd())
	rootCmd.AddCommand(GetDiffCmd())
	rootCmd.AddCommand(GetReportCmd())
}

// setupObservability builds the per-invocation context: op ID, logger,
// optional tracer, optional receipt writer.
func setupObservability(cmd *cobra.Command, args []string) error {
	ctx := observability.WithOpID(cmd.Context())

	logger, err := logging.NewLogger(logging.Config{
		Format: logFormatFlag,
		Level:  logLevelFlag,
		Output: logOutputFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	ctx = logging.WithLogger(ctx, logger)

	if otelFlag {
		cfg := otelobs.DefaultConfig()
		cfg.Enabled = true
		cfg.Endpoint = otelEndpoint
		cfg.Protocol = otelProtocol
		cfg.Insecure = otelInsecure
		cfg.SampleRatio = otelSampleRatio

		handle, err := otelobs.Init(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		ctx = otelobs.WithHandle(ctx, handle)
	}

	if receiptPathFlag != "" {
		w, err := receipt.NewWriter(receiptPathFlag, receiptModeFlag)
		if err != nil {
			return fmt.Errorf("failed to initialize receipt writer: %w", err)
		}
		ctx = receipt.WithWriter(ctx, w)
	}

	cmd.SetContext(ctx)
	return nil
}

// teardownObservability flushes the tracer and closes writers.
func teardownObservability(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	if h := otelobs.From(ctx); h != nil {
		_ = h.Shutdown(ctx)
	}
	if w := receipt.From(ctx); w != nil {
		_ = w.Close()
	}
	_ = logging.From(ctx).Close()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
