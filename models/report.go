package models

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// URLOutcome is the per-URL record of a batch run.
type URLOutcome struct {
	URL        string         `json:"url" yaml:"url"`
	Status     string         `json:"status" yaml:"status"`
	Result     *FinalDocument `json:"result,omitempty" yaml:"-"`
	Error      string         `json:"error,omitempty" yaml:"error,omitempty"`
	OutputFile string         `json:"output_file,omitempty" yaml:"output_file,omitempty"`
}

// BatchReport is the persisted summary of a batch run.
type BatchReport struct {
	ProcessedAt string       `json:"processed_at" yaml:"processed_at"`
	TotalURLs   int          `json:"total_urls" yaml:"total_urls"`
	Successful  int          `json:"successful" yaml:"successful"`
	Failed      int          `json:"failed" yaml:"failed"`
	Results     []URLOutcome `json:"results" yaml:"results"`
}

// NewBatchReport counts outcomes by status.
func NewBatchReport(processedAt string, outcomes []URLOutcome) *BatchReport {
	if outcomes == nil {
		outcomes = []URLOutcome{}
	}
	report := &BatchReport{
		ProcessedAt: processedAt,
		TotalURLs:   len(outcomes),
		Results:     outcomes,
	}
	for _, o := range outcomes {
		if o.Status == StatusSuccess {
			report.Successful++
		} else {
			report.Failed++
		}
	}
	return report
}
