package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newModelsCommand(root *rootOptions) *cobra.Command {
	var selectModel string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models in the registry and optionally select one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, err := root.headless(cmd.Context())
			if err != nil {
				return err
			}
			defer components.Close()
			sess := components.Session

			if err := sess.RefreshModels(); err != nil {
				return err
			}
			sess.Wait()
			snap := sess.Snapshot()
			if !snap.ModelsLoaded {
				return fmt.Errorf("model registry at %s is unreachable", components.Settings.Registry.BaseURL)
			}
			if len(snap.Models) == 0 {
				return errors.New("the model registry has no models")
			}

			if selectModel != "" {
				if err := sess.SetModel(selectModel); err != nil {
					return err
				}
				snap = sess.Snapshot()
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "\tNAME\tSIZE\tDIGEST")
			for _, model := range snap.Models {
				marker := ""
				if model.Name == snap.SelectedModel {
					marker = "*"
				}
				digest := model.ContentHash
				if len(digest) > 12 {
					digest = digest[:12]
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, model.Name, formatBytes(model.SizeBytes), digest)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&selectModel, "select", "", "Select and save this model")
	return cmd
}

func formatBytes(size int64) string {
	switch {
	case size >= 1e9:
		return fmt.Sprintf("%.1f GB", float64(size)/1e9)
	case size >= 1e6:
		return fmt.Sprintf("%.1f MB", float64(size)/1e6)
	case size > 0:
		return fmt.Sprintf("%d B", size)
	default:
		return "-"
	}
}
