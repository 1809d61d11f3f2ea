package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewTypeCmd создаёт группу команд для управления типами контрактов.
func NewTypeCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "type",
		Short: "Manage contract types and their templates",
	}

	cmd.AddCommand(
		newTypeListCmd(clientFn, outputFn),
		newTypeCreateCmd(clientFn, outputFn),
		newTypeShowCmd(clientFn, outputFn),
		newTypeDeleteCmd(clientFn, outputFn),
		newTypeTemplatesCmd(clientFn, outputFn),
		newTypeUploadCmd(clientFn, outputFn),
		newTypeImportCmd(clientFn, outputFn),
	)

	return cmd
}

var typeHeaders = []string{"ID", "NAME", "ACTIVE", "CREATED"}

func typeRow(ct ContractTypeResponse) []string {
	return []string{ct.ID, ct.Name, strconv.FormatBool(ct.IsActive), ct.CreatedAt}
}

func newTypeListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contract types",
		RunE: func(cmd *cobra.Command, args []string) error {
			types, err := clientFn().ListContractTypes()
			if err != nil {
				return err
			}

			rows := make([][]string, len(types))
			for i, ct := range types {
				rows[i] = typeRow(ct)
			}

			outputFn().Print(typeHeaders, rows, types)
			return nil
		},
	}
}

func newTypeCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name, description string
	var inactive bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a contract type",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			req := CreateContractTypeRequest{Name: name, Description: description}
			if inactive {
				active := false
				req.IsActive = &active
			}

			ct, err := clientFn().CreateContractType(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Contract type created: %s", ct.ID))
			out.Print(typeHeaders, [][]string{typeRow(*ct)}, ct)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Contract type name (required)")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Create the type disabled for new renders")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newTypeShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show contract type details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := clientFn().GetContractType(args[0])
			if err != nil {
				return err
			}

			outputFn().Print(typeHeaders, [][]string{typeRow(*ct)}, ct)
			return nil
		},
	}
}

func newTypeDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a contract type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().DeleteContractType(args[0]); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Contract type deleted: %s", args[0]))
			return nil
		},
	}
}

func newTypeTemplatesCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var show string

	cmd := &cobra.Command{
		Use:   "templates TYPE_ID",
		Short: "List template versions or print one with --show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if show != "" {
				tv, err := client.GetTemplateVersion(args[0], show)
				if err != nil {
					return err
				}
				out.Raw([]byte(tv.HTML))
				return nil
			}

			versions, err := client.ListTemplateVersions(args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, len(versions))
			for i, v := range versions {
				rows[i] = []string{v.ContractTypeID, strconv.Itoa(v.Version), v.CreatedAt}
			}

			out.Print([]string{"TYPE_ID", "VERSION", "CREATED"}, rows, versions)
			return nil
		},
	}

	cmd.Flags().StringVar(&show, "show", "", "Print HTML of a version (number or \"latest\")")

	return cmd
}

func newTypeUploadCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "upload TYPE_ID",
		Short: "Upload a new template version from an HTML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			html, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read template: %w", err)
			}

			tv, err := clientFn().UploadTemplate(args[0], string(html))
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Template version %d uploaded", tv.Version))
			out.Print(
				[]string{"TYPE_ID", "VERSION", "CREATED"},
				[][]string{{tv.ContractTypeID, strconv.Itoa(tv.Version), tv.CreatedAt}},
				tv,
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to template HTML (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newTypeImportCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "import CATALOG.yaml",
		Short: "Create contract types and upload templates from a YAML catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			catalog, err := LoadCatalog(args[0])
			if err != nil {
				return err
			}

			results, err := ImportCatalog(clientFn(), catalog)
			if err != nil {
				return err
			}

			rows := make([][]string, len(results))
			for i, r := range results {
				version := "-"
				if r.Version > 0 {
					version = strconv.Itoa(r.Version)
				}
				rows[i] = []string{r.TypeID, r.Name, strconv.FormatBool(r.Created), version}
			}

			out.Success(fmt.Sprintf("Imported %d contract types", len(results)))
			out.Print([]string{"ID", "NAME", "CREATED", "VERSION"}, rows, results)
			return nil
		},
	}
}
