// Package cli implements the paidup command line tool.  Every command reads
// a claim snapshot from a JSON file and runs the engine locally; no server
// or database is involved.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/paidup/paidup/internal/config"
	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/internal/domain/deadline"
	"github.com/paidup/paidup/internal/domain/document"
	"github.com/paidup/paidup/internal/domain/interest"
	"github.com/paidup/paidup/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the global flags shared by every command.
type rootOptions struct {
	ClaimPath string
	AsOf      string
}

// engine bundles the domain components a command runs against.
type engine struct {
	calculator  *interest.Calculator
	scheduler   *deadline.Scheduler
	recommender *document.Recommender
	builder     *document.Builder
}

func newEngine() *engine {
	var cfg config.Config
	config.ApplyDefaults(&cfg)
	calc := interest.NewCalculator(interest.NewRates(
		cfg.Interest.StatutoryRatePercent,
		cfg.Interest.BaseRatePercent,
		cfg.Interest.CountyCourtRatePercent,
	))
	protocol := deadline.Protocol{
		FirstChaserAfterDays:      cfg.Protocol.FirstChaserAfterDays,
		FinalDemandAfterDays:      cfg.Protocol.FinalDemandAfterDays,
		LBASuggestedAfterDays:     cfg.Protocol.LBASuggestedAfterDays,
		ResponseWindowIndividual:  cfg.Protocol.ResponseWindowIndividual,
		ResponseWindowCompany:     cfg.Protocol.ResponseWindowCompany,
		CourtFilingGraceAfterDays: cfg.Protocol.CourtFilingGraceAfterDays,
	}
	return &engine{
		calculator:  calc,
		scheduler:   deadline.NewScheduler(protocol),
		recommender: document.NewRecommender(calc, protocol, cfg.Protocol.ChaserRecommendedOverdueBy),
		builder:     document.NewBuilder(nil),
	}
}

// NewRootCommand builds the paidup command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "paidup",
		Short: "PaidUp debt-recovery engine",
		Long: "PaidUp computes statutory interest on overdue UK invoices, checks claim\n" +
			"timelines, derives Pre-Action Protocol deadlines, recommends the next\n" +
			"legal document and drafts its content.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ClaimPath, "claim", "c", "", "path to the claim JSON file")
	cmd.PersistentFlags().StringVar(&opts.AsOf, "as-of", "", "calculation date (YYYY-MM-DD, default today)")

	cmd.AddCommand(
		newInterestCommand(opts),
		newValidateCommand(opts),
		newScheduleCommand(opts),
		newRecommendCommand(opts),
		newGenerateCommand(opts),
	)
	return cmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (o *rootOptions) loadClaim() (claim.State, error) {
	if o.ClaimPath == "" {
		return claim.State{}, errors.NewValidation("--claim is required", "claim")
	}
	data, err := os.ReadFile(o.ClaimPath)
	if err != nil {
		return claim.State{}, errors.Wrap(err, errors.CodeValidation, "failed to read claim file")
	}
	var state claim.State
	if err := json.Unmarshal(data, &state); err != nil {
		return claim.State{}, errors.Wrap(err, errors.CodeValidation, "claim file is not valid JSON")
	}
	if state.ID == "" {
		state.ID = "local"
	}
	return state, nil
}

func (o *rootOptions) asOf() (time.Time, error) {
	if o.AsOf == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.DateOnly, o.AsOf)
	if err != nil {
		return time.Time{}, errors.NewValidation("--as-of must be a YYYY-MM-DD date", "as_of")
	}
	return t, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
