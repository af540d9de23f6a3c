package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/churn-cli/internal/pipeline"
	"github.com/sells-group/churn-cli/internal/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Schema-check a customer batch without training",
	Long: `Validate parses a customer batch and runs the schema checks alone,
printing every offending row. Useful before committing to a long training run.

Examples:
  churn-cli validate --input customers.csv
  churn-cli validate --input new_customers.csv --unlabeled`,
	RunE: runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.String("input", "", "customer batch file (.csv or .xlsx)")
	f.Bool("unlabeled", false, "treat the batch as a scoring batch (churn_label optional)")
	_ = validateCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	input, _ := cmd.Flags().GetString("input")
	unlabeled, _ := cmd.Flags().GetBool("unlabeled")

	rows, err := pipeline.LoadBatch(input)
	if err != nil {
		return err
	}

	records, err := schema.Validate(rows, !unlabeled)
	if err != nil {
		var schemaErr *schema.Error
		if errors.As(err, &schemaErr) {
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d rows failed validation:\n", len(schemaErr.Rows), len(rows))
			for _, re := range schemaErr.Rows {
				fmt.Fprintln(cmd.OutOrStdout(), "  "+re.String())
			}
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d rows valid\n", len(records))
	return nil
}
