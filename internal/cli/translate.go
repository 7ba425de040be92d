package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KazKozDev/ConText/internal/domain"
)

type translateOptions struct {
	from  string
	to    string
	model string
	speak bool
}

func newTranslateCommand(root *rootOptions) *cobra.Command {
	opts := &translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate text from arguments or stdin",
		Long: `Translates text with the selected model and prints the result.
Use --from auto to detect the source language first.`,
		Example: `  context translate --from ru --to en "Привет"
  echo "Guten Tag" | context translate --from auto`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, root, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.from, "from", "", "Source language code, or \"auto\" (default from config)")
	cmd.Flags().StringVar(&opts.to, "to", "", "Target language code (default from config)")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Model name (default is the saved selection)")
	cmd.Flags().BoolVar(&opts.speak, "speak", false, "Read the translation aloud")
	return cmd
}

func runTranslate(cmd *cobra.Command, root *rootOptions, opts *translateOptions, args []string) error {
	text, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	if domain.IsBlank(text) {
		return errors.New("no text to translate")
	}

	components, err := root.headless(cmd.Context())
	if err != nil {
		return err
	}
	defer components.Close()
	sess := components.Session

	if err := sess.SetText(domain.SlotSource, text); err != nil {
		return err
	}
	if opts.from == "auto" {
		if err := sess.DetectSourceLanguage(); err != nil {
			return err
		}
		sess.Wait()
		if err := failure(sess.Snapshot()); err != nil {
			return err
		}
	} else if opts.from != "" {
		if err := sess.SetLanguage(domain.SlotSource, opts.from); err != nil {
			return err
		}
	}
	if opts.to != "" {
		if err := sess.SetLanguage(domain.SlotTarget, opts.to); err != nil {
			return err
		}
	}
	if opts.model != "" {
		if err := sess.SetModel(opts.model); err != nil {
			return err
		}
	}

	if err := sess.Translate(); err != nil {
		return err
	}
	sess.Wait()
	snap := sess.Snapshot()
	if err := failure(snap); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), snap.Target.Text)

	if opts.speak {
		if err := sess.Speak(domain.SlotTarget); err != nil {
			return err
		}
		sess.Wait()
		return failure(sess.Snapshot())
	}
	return nil
}
