package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"twin-sync/core/batch"
	"twin-sync/core/input"
	"twin-sync/core/policy"
	"twin-sync/core/report"
)

var (
	// Flags for batch submit
	submitKind     string
	submitFile     string
	submitBatchID  string
	submitAccess   string
	submitBPNs     []string
	submitPolicies string

	// Flags for batch delete and status
	deleteRef string
	statusID  string
)

// batchCmd is the parent command for batch operations.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Submit, undo and inspect batches",
	Long: `Runs batches in-process against the configured registry, connector and
database. Commands wait for the batch to finish and print its report.`,
}

var batchSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a CSV or XLSX file as a create batch",
	Long: `Parses a local CSV or XLSX file and reconciles every row.

Examples:
  # Kind selected by the file's columns
  batch submit --file parts.csv

  # Restricted to two partners
  batch submit --kind part-as-planned --file parts.xlsx --access restricted --bpn BPNL0001 --bpn BPNL0002

  # With a usage policy
  batch submit --file parts.csv --policies '[{"type":"PURPOSE","type_of_access":"RESTRICTED","value":"ID 3.1 Trace"}]'`,
	RunE: runBatchSubmit,
}

var batchDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Undo a create batch",
	RunE:  runBatchDelete,
}

var batchStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the report and failures of a batch",
	RunE:  runBatchStatus,
}

func init() {
	batchSubmitCmd.Flags().StringVar(&submitKind, "kind", "", "Data kind (selected by columns when empty)")
	batchSubmitCmd.Flags().StringVar(&submitFile, "file", "", "CSV or XLSX input file")
	batchSubmitCmd.Flags().StringVar(&submitBatchID, "batch-id", "", "Batch id (generated when empty)")
	batchSubmitCmd.Flags().StringVar(&submitAccess, "access", "unrestricted", "Type of access (restricted, unrestricted)")
	batchSubmitCmd.Flags().StringSliceVar(&submitBPNs, "bpn", nil, "Business partner number granted access (repeatable)")
	batchSubmitCmd.Flags().StringVar(&submitPolicies, "policies", "", "Usage policies as JSON")
	_ = batchSubmitCmd.MarkFlagRequired("file")

	batchDeleteCmd.Flags().StringVar(&deleteRef, "ref", "", "Batch id to undo")
	_ = batchDeleteCmd.MarkFlagRequired("ref")

	batchStatusCmd.Flags().StringVar(&statusID, "id", "", "Batch id")
	_ = batchStatusCmd.MarkFlagRequired("id")

	batchCmd.AddCommand(batchSubmitCmd, batchDeleteCmd, batchStatusCmd)
	RootCmd.AddCommand(batchCmd)
}

func runBatchSubmit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	table, err := input.ParseFile(submitFile)
	if err != nil {
		return err
	}

	meta := report.Metadata{TypeOfAccess: submitAccess, BPNNumbers: submitBPNs}
	if submitPolicies != "" {
		var policies []policy.UsagePolicy
		if err := json.Unmarshal([]byte(submitPolicies), &policies); err != nil {
			return fmt.Errorf("invalid --policies: %w", err)
		}
		meta.UsagePolicies = policies
	}

	svc, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}

	req := batch.Request{BatchID: submitBatchID, Kind: submitKind, Meta: meta, Rows: table.Rows}
	var batchID string
	if submitKind == "" {
		batchID, err = svc.orch.SubmitColumns(ctx, req, table.Columns)
	} else {
		batchID, err = svc.orch.SubmitCreate(ctx, req)
	}
	if err != nil {
		return err
	}
	svc.log.Info("Batch submitted", zap.String("batch_id", batchID), zap.Int("rows", len(table.Rows)))

	return finishAndPrint(ctx, svc, batchID)
}

func runBatchDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	batchID, err := svc.orch.SubmitDelete(ctx, deleteRef)
	if err != nil {
		return err
	}
	svc.log.Info("Delete batch submitted", zap.String("batch_id", batchID), zap.String("reference", deleteRef))

	return finishAndPrint(ctx, svc, batchID)
}

func runBatchStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	return printReport(ctx, svc, statusID)
}

// finishAndPrint waits for the batch to end, then prints its report.
func finishAndPrint(ctx context.Context, svc *services, batchID string) error {
	if err := svc.orch.Shutdown(ctx); err != nil {
		return err
	}
	return printReport(ctx, svc, batchID)
}

func printReport(ctx context.Context, svc *services, batchID string) error {
	r, err := svc.orch.Report(ctx, batchID)
	if err != nil {
		return fmt.Errorf("batch %s: %w", batchID, err)
	}
	failures, err := svc.orch.Failures(ctx, batchID)
	if err != nil {
		return err
	}

	fmt.Println("\n--- Batch Report ---")
	fmt.Printf("Batch:          %s\n", r.BatchID)
	fmt.Printf("Kind:           %s\n", r.Kind)
	if r.IsDelete() {
		fmt.Printf("Undoes:         %s\n", r.ReferenceBatchID)
	}
	fmt.Printf("Total:          %d\n", r.Total)
	if r.IsDelete() {
		fmt.Printf("Deleted:        %d\n", r.Deleted)
	} else {
		fmt.Printf("Created:        %d\n", r.Success)
		fmt.Printf("Updated:        %d\n", r.Updated)
	}
	fmt.Printf("Failed:         %d\n", r.Failure)

	statusColor := "\033[32m" // Green
	if r.Status == report.StatusFailed {
		statusColor = "\033[31m" // Red
	} else if r.Failure > 0 || !r.Status.Terminal() {
		statusColor = "\033[33m" // Yellow
	}
	fmt.Printf("Status:         %s%s%s\n", statusColor, r.Status, "\033[0m")
	if r.Error != "" {
		fmt.Printf("Error:          %s\n", r.Error)
	}

	if len(failures) > 0 {
		fmt.Println("\nFailed rows:")
		for _, f := range failures {
			fmt.Printf("- row %d [%s] %s\n", f.RowNumber, f.Stage, f.Message)
		}
	}
	fmt.Println("--------------------")
	return nil
}
