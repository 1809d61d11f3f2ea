package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewPreviewCmd создаёт команду синхронного предпросмотра.
func NewPreviewCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var req PreviewRequest
	var draft, file string

	cmd := &cobra.Command{
		Use:   "preview CONTRACT_ID",
		Short: "Render a contract synchronously on the server",
		Long: "Renders a stored template version, or a local draft passed with --draft,\n" +
			"without creating a render job.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if draft != "" {
				html, err := os.ReadFile(draft)
				if err != nil {
					return fmt.Errorf("read draft: %w", err)
				}
				req.HTML = string(html)
			}

			if strings.EqualFold(req.Format, "pdf") {
				pdf, err := client.PreviewRaw(args[0], req)
				if err != nil {
					return err
				}
				return writeDocument(out, file, pdf)
			}

			preview, err := client.Preview(args[0], req)
			if err != nil {
				return err
			}

			if out.jsonMode {
				out.JSON(preview)
				return nil
			}
			if err := writeDocument(out, file, []byte(preview.HTML)); err != nil {
				return err
			}
			out.Stats(preview.Stats.Scalars, preview.Stats.Lists, preview.Stats.Functions, preview.Stats.Unresolved)
			for _, token := range preview.Unresolved {
				out.Error("unresolved " + token)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&req.Version, "version", 0, "Template version (default: latest)")
	cmd.Flags().StringVar(&req.Format, "format", "html", "Output format: html or pdf")
	cmd.Flags().StringVar(&draft, "draft", "", "Render a local template file instead of a stored version")
	cmd.Flags().StringVarP(&file, "out", "o", "", "Write to file instead of stdout")

	return cmd
}
