package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRenderCmd создаёт группу команд для рендеринга.
func NewRenderCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render contracts",
	}

	cmd.AddCommand(
		newRenderStartCmd(clientFn, outputFn),
		newRenderShowCmd(clientFn, outputFn),
		newRenderOutputCmd(clientFn, outputFn),
		newRenderListCmd(clientFn, outputFn),
		newRenderLocalCmd(outputFn),
	)

	return cmd
}

var renderHeaders = []string{"ID", "CONTRACT", "VERSION", "FORMAT", "STATUS", "CREATED"}

func renderRow(j RenderJobResponse) []string {
	version := "latest"
	if j.TemplateVersion > 0 {
		version = strconv.Itoa(j.TemplateVersion)
	}
	return []string{j.ID, j.ContractID, version, j.Format, j.Status, j.CreatedAt}
}

func newRenderStartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var req CreateRenderRequest

	cmd := &cobra.Command{
		Use:   "start CONTRACT_ID",
		Short: "Queue an asynchronous render",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			job, err := clientFn().StartRender(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Render queued: %s", job.ID))
			out.Print(renderHeaders, [][]string{renderRow(*job)}, job)
			return nil
		},
	}

	cmd.Flags().IntVar(&req.Version, "version", 0, "Template version (default: latest)")
	cmd.Flags().StringVar(&req.Format, "format", "html", "Output format: html or pdf")

	return cmd
}

func newRenderShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show render job details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			job, err := clientFn().GetRender(args[0])
			if err != nil {
				return err
			}

			out.Print(renderHeaders, [][]string{renderRow(*job)}, job)
			if job.Error != "" && !out.jsonMode {
				out.Error(job.Error)
			}
			return nil
		},
	}
}

func newRenderOutputCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "output ID",
		Short: "Download the rendered document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := clientFn().RenderOutput(args[0])
			if err != nil {
				return err
			}
			return writeDocument(outputFn(), file, data)
		},
	}

	cmd.Flags().StringVarP(&file, "out", "o", "", "Write to file instead of stdout")

	return cmd
}

func newRenderListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var opts ListRendersOpts

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List render jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := clientFn().ListRenders(opts)
			if err != nil {
				return err
			}

			rows := make([][]string, len(jobs))
			for i, j := range jobs {
				rows[i] = renderRow(j)
			}

			outputFn().Print(renderHeaders, rows, jobs)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ContractID, "contract", "", "Filter by contract ID")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status (PENDING, RUNNING, SUCCEEDED, FAILED)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of jobs")

	return cmd
}

func newRenderLocalCmd(outputFn func() *Output) *cobra.Command {
	var templatePath, contractPath, file string
	var watch bool

	cmd := &cobra.Command{
		Use:   "local",
		Short: "Render a template with a contract JSON offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			render := func() error {
				html, stats, err := RenderLocal(templatePath, contractPath)
				if err != nil {
					return err
				}
				if err := writeDocument(out, file, []byte(html)); err != nil {
					return err
				}
				out.Stats(stats.Scalars, stats.Lists, stats.Functions, stats.Unresolved)
				return nil
			}

			if err := render(); err != nil && !watch {
				return err
			} else if err != nil {
				out.Error(err.Error())
			}
			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out.Success("Watching for changes, press Ctrl+C to stop")
			return Watch(ctx, []string{templatePath, contractPath}, func(path string) {
				out.Success("Changed: " + path)
				if err := render(); err != nil {
					out.Error(err.Error())
				}
			})
		},
	}

	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "Path to template HTML (required)")
	cmd.Flags().StringVarP(&contractPath, "contract", "c", "", "Path to contract JSON (required)")
	cmd.Flags().StringVarP(&file, "out", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-render when the template or contract changes")
	cmd.MarkFlagRequired("template")
	cmd.MarkFlagRequired("contract")

	return cmd
}

// writeDocument пишет документ в файл или в stdout.
func writeDocument(out *Output, file string, data []byte) error {
	if file == "" {
		out.Raw(data)
		return nil
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	out.Success(fmt.Sprintf("Written %d bytes to %s", len(data), file))
	return nil
}
