package history

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/doc-leveler/internal/common"
	"github.com/dtnitsch/doc-leveler/models"
	dbpkg "github.com/dtnitsch/doc-leveler/pkg/db"
	"github.com/dtnitsch/doc-leveler/pkg/storage"
)

// HistoryAction lists recorded batches, most recent first.
func HistoryAction(c *cli.Context) error {
	database, err := openDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	var batches []dbpkg.Batch
	if rawURL := c.String("url"); rawURL != "" {
		batches, err = database.ListBatchesForURL(common.SanitizeURL(rawURL), c.Int("limit"))
	} else {
		batches, err = database.ListBatches(c.Int("limit"))
	}
	if err != nil {
		return fmt.Errorf("failed to list batches: %w", err)
	}

	if len(batches) == 0 {
		fmt.Println("No batches found")
		return nil
	}

	fmt.Printf("%-6s %-20s %-8s %-8s %-8s %-50s\n",
		"ID", "Processed", "URLs", "Success", "Failed", "Report")
	fmt.Println(strings.Repeat("-", 104))

	for _, b := range batches {
		fmt.Printf("%-6d %-20s %-8d %-8d %-8d %-50s\n",
			b.BatchID,
			b.ProcessedAt,
			b.TotalURLs,
			b.SuccessCount,
			b.FailedCount,
			b.ReportPath,
		)
	}

	fmt.Printf("\nTotal: %d batches\n", len(batches))
	fmt.Printf("\nTip: Use 'doc-leveler history show <id>' to see details\n")

	return nil
}

// ShowAction prints one batch and its outcomes as YAML. With --level, each
// successful outcome also carries that level's summary from the saved report.
func ShowAction(c *cli.Context) error {
	var level models.Level
	if c.IsSet("level") {
		var err error
		if level, err = models.ParseLevel(c.String("level")); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	database, err := openDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	batchID, err := BatchIDOrLatest(c.Args().First(), database)
	if err != nil {
		return err
	}

	batch, err := database.GetBatchByID(batchID)
	if err != nil {
		return fmt.Errorf("failed to get batch: %w", err)
	}
	results, err := database.GetBatchResults(batchID)
	if err != nil {
		return err
	}

	view := NewBatchView(batch, results)
	if level != "" {
		var report models.BatchReport
		if err := storage.New().ReadJSON(batch.ReportPath, &report); err != nil {
			return fmt.Errorf("failed to read batch report: %w", err)
		}
		AttachSummaries(&view, &report, level)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(view)
}

func openDB(c *cli.Context) (*dbpkg.DB, error) {
	path, err := dbPath(c)
	if err != nil {
		return nil, err
	}
	database, err := dbpkg.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}
