package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KazKozDev/ConText/internal/domain"
)

// errChecksFailed is returned by doctor when any check fails.
var errChecksFailed = errors.New("one or more checks failed")

func newDoctorCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the translation service and model registry are reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, err := root.headless(cmd.Context())
			if err != nil {
				return err
			}
			defer components.Close()

			report := components.Checker.Run(cmd.Context(), components.Settings)
			out := cmd.OutOrStdout()
			for _, item := range report.Items {
				mark := "✓"
				if item.Status == domain.DiagnosticStatusFail {
					mark = "✗"
				}
				fmt.Fprintf(out, "%s %s: %s\n", mark, item.Name, item.Message)
				if item.Status == domain.DiagnosticStatusFail && item.Hint != "" {
					fmt.Fprintf(out, "    %s\n", item.Hint)
				}
			}
			if report.HasFailures {
				return errChecksFailed
			}
			return nil
		},
	}
}
