package history

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/doc-leveler/models"
	dbpkg "github.com/dtnitsch/doc-leveler/pkg/db"
)

// BatchView is the YAML shape printed by `history show`.
type BatchView struct {
	BatchID     int64        `yaml:"batch_id"`
	ProcessedAt string       `yaml:"processed_at"`
	ReportPath  string       `yaml:"report_path"`
	TotalURLs   int          `yaml:"total_urls"`
	Successful  int          `yaml:"successful"`
	Failed      int          `yaml:"failed"`
	Results     []ResultView `yaml:"results"`
}

type ResultView struct {
	URL        string `yaml:"url"`
	Status     string `yaml:"status"`
	Error      string `yaml:"error,omitempty"`
	OutputFile string `yaml:"output_file,omitempty"`
	Sections   int    `yaml:"sections,omitempty"`
	Summary    string `yaml:"summary,omitempty"`
}

func NewBatchView(b *dbpkg.Batch, results []dbpkg.BatchResult) BatchView {
	v := BatchView{
		BatchID:     b.BatchID,
		ProcessedAt: b.ProcessedAt,
		ReportPath:  b.ReportPath,
		TotalURLs:   b.TotalURLs,
		Successful:  b.SuccessCount,
		Failed:      b.FailedCount,
		Results:     make([]ResultView, 0, len(results)),
	}
	for _, r := range results {
		v.Results = append(v.Results, ResultView{
			URL:        r.URL,
			Status:     r.Status,
			Error:      r.ErrorMessage,
			OutputFile: r.OutputFile,
			Sections:   r.SectionsCount,
		})
	}
	return v
}

// AttachSummaries copies each successful document's summary for level from the
// saved batch report into v. Results are matched by position and URL.
func AttachSummaries(v *BatchView, report *models.BatchReport, level models.Level) {
	for i := range v.Results {
		if i >= len(report.Results) {
			return
		}
		outcome := report.Results[i]
		if outcome.Result == nil || outcome.URL != v.Results[i].URL {
			continue
		}
		v.Results[i].Summary = outcome.Result.Summary(level)
	}
}

// BatchIDOrLatest parses arg as a batch ID, or returns the latest batch if arg is empty.
func BatchIDOrLatest(arg string, database *dbpkg.DB) (int64, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		id, err := database.LatestBatchID()
		if err != nil {
			return 0, fmt.Errorf("%w. Run 'doc-leveler batch <url>...' first", err)
		}
		return id, nil
	}

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid batch ID: %s", arg)
	}
	return id, nil
}

func dbPath(c *cli.Context) (string, error) {
	if c.IsSet("db") {
		return c.String("db"), nil
	}
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return "", err
	}
	return cfg.DBPath, nil
}
