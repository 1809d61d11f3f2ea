package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewContractCmd создаёт группу команд для управления контрактами.
func NewContractCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Manage contract snapshots",
	}

	cmd.AddCommand(
		newContractListCmd(clientFn, outputFn),
		newContractShowCmd(clientFn, outputFn),
		newContractCreateCmd(clientFn, outputFn),
		newContractDeleteCmd(clientFn, outputFn),
	)

	return cmd
}

var contractHeaders = []string{"ID", "NUMBER", "CUSTOMER", "PLAN", "CREATED"}

func contractRow(c ContractResponse) []string {
	return []string{c.ID, c.Number, c.CustomerName, c.PlanName, c.CreatedAt}
}

func newContractListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var typeID string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contracts",
		RunE: func(cmd *cobra.Command, args []string) error {
			contracts, err := clientFn().ListContracts(typeID, limit)
			if err != nil {
				return err
			}

			rows := make([][]string, len(contracts))
			for i, c := range contracts {
				rows[i] = contractRow(c)
			}

			outputFn().Print(contractHeaders, rows, contracts)
			return nil
		},
	}

	cmd.Flags().StringVar(&typeID, "type", "", "Filter by contract type ID")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of contracts")

	return cmd
}

func newContractShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a contract snapshot with its price composition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			detail, err := clientFn().GetContract(args[0])
			if err != nil {
				return err
			}

			if out.jsonMode || detail.Proration == nil {
				out.JSON(detail)
				return nil
			}

			rows := make([][]string, 0, len(detail.Proration.Items)+1)
			for _, item := range detail.Proration.Items {
				rows = append(rows, []string{
					item.ShortName,
					item.Name,
					strconv.FormatFloat(item.ValueWithoutBenefit, 'f', 2, 64),
					strconv.FormatFloat(item.ValueWithBenefit, 'f', 2, 64),
				})
			}
			rows = append(rows, []string{
				"", "TOTAL",
				strconv.FormatFloat(detail.Proration.TotalWithoutBenefit, 'f', 2, 64),
				strconv.FormatFloat(detail.Proration.TotalWithBenefit, 'f', 2, 64),
			})

			out.Table([]string{"SHORT", "ITEM", "WITHOUT_BENEFIT", "WITH_BENEFIT"}, rows)
			return nil
		},
	}
}

func newContractCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a contract from a JSON snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read contract: %w", err)
			}
			if !json.Valid(data) {
				return fmt.Errorf("%s is not valid JSON", file)
			}

			c, err := clientFn().CreateContract(data)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Contract created: %s", c.ID))
			out.Print(contractHeaders, [][]string{contractRow(*c)}, c)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to contract JSON (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newContractDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().DeleteContract(args[0]); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Contract deleted: %s", args[0]))
			return nil
		},
	}
}
