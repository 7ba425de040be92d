package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KazKozDev/ConText/internal/domain"
)

type summarizeOptions struct {
	lang       string
	url        string
	transcript string
}

func newSummarizeCommand(root *rootOptions) *cobra.Command {
	opts := &summarizeOptions{}
	cmd := &cobra.Command{
		Use:   "summarize [text...]",
		Short: "Summarize text, a web page, or a video transcript",
		Example: `  context summarize --url https://example.com/article
  context summarize --transcript https://www.youtube.com/watch?v=ID
  cat notes.txt | context summarize --lang en`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd, root, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.lang, "lang", "", "Language code of the text (default from config)")
	cmd.Flags().StringVar(&opts.url, "url", "", "Summarize the readable content of a web page")
	cmd.Flags().StringVar(&opts.transcript, "transcript", "", "Summarize the transcript of a video")
	cmd.MarkFlagsMutuallyExclusive("url", "transcript")
	return cmd
}

func runSummarize(cmd *cobra.Command, root *rootOptions, opts *summarizeOptions, args []string) error {
	var text string
	if opts.url == "" && opts.transcript == "" {
		var err error
		if text, err = readInput(cmd.InOrStdin(), args); err != nil {
			return err
		}
		if domain.IsBlank(text) {
			return errors.New("no text to summarize")
		}
	}

	components, err := root.headless(cmd.Context())
	if err != nil {
		return err
	}
	defer components.Close()
	sess := components.Session

	if opts.lang != "" {
		if err := sess.SetLanguage(domain.SlotSource, opts.lang); err != nil {
			return err
		}
	}

	switch {
	case opts.url != "":
		err = sess.IngestURL(domain.SlotSource, opts.url)
	case opts.transcript != "":
		err = sess.IngestTranscript(domain.SlotSource, opts.transcript)
	default:
		err = sess.SetText(domain.SlotSource, text)
	}
	if err != nil {
		return err
	}
	sess.Wait()
	if err := failure(sess.Snapshot()); err != nil {
		return err
	}

	if err := sess.SummarizeSlot(domain.SlotSource); err != nil {
		return err
	}
	sess.Wait()
	snap := sess.Snapshot()
	if err := failure(snap); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), snap.Source.ActiveText())
	return nil
}
