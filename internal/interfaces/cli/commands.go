package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paidup/paidup/internal/domain/claim"
)

func newInterestCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "interest",
		Short: "Calculate statutory interest on the claim",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := opts.loadClaim()
			if err != nil {
				return err
			}
			asOf, err := opts.asOf()
			if err != nil {
				return err
			}
			result, err := newEngine().calculator.Calculate(state, asOf)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
}

func newValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the claim timeline for ordering problems",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := opts.loadClaim()
			if err != nil {
				return err
			}
			warning, ok := claim.ValidateTimeline(state.Timeline)
			return printJSON(cmd, map[string]interface{}{
				"consistent": ok,
				"warning":    warning,
			})
		},
	}
}

func newScheduleCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Derive Pre-Action Protocol deadlines for the claim",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := opts.loadClaim()
			if err != nil {
				return err
			}
			deadlines, err := newEngine().scheduler.Schedule(state, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd, deadlines)
		},
	}
}

func newRecommendCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Recommend the next legal document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := opts.loadClaim()
			if err != nil {
				return err
			}
			asOf, err := opts.asOf()
			if err != nil {
				return err
			}
			rec := newEngine().recommender.Recommend(state, asOf)
			return printJSON(cmd, rec)
		},
	}
}

func newGenerateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [document-type]",
		Short: "Draft document content (polite_chaser, lba or form_n1)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := opts.loadClaim()
			if err != nil {
				return err
			}
			asOf, err := opts.asOf()
			if err != nil {
				return err
			}
			docType := claim.DocumentType(args[0])

			eng := newEngine()
			result, ierr := eng.calculator.Calculate(state, asOf)
			var resultPtr = &result
			if ierr != nil {
				if docType != claim.DocPoliteChaser {
					return ierr
				}
				resultPtr = nil
			}

			doc, err := eng.builder.Generate(cmd.Context(), state, docType, resultPtr)
			if err != nil {
				return err
			}

			for _, section := range doc.Sections {
				fmt.Fprintf(cmd.OutOrStdout(), "== %s ==\n%s\n\n", section.Name, section.Text)
			}
			return nil
		},
	}
}
