package reporter

import (
	"encoding/json"
	"fmt"
	"time"

	"scalermon/internal/config"
	"scalermon/internal/database"
	"scalermon/internal/models"
)

// Reporter summarizes the change-event journal.
type Reporter struct {
	config *config.Config
	repo   *database.Repository
}

// New creates a new reporter
func New(cfg *config.Config, repo *database.Repository) *Reporter {
	return &Reporter{
		config: cfg,
		repo:   repo,
	}
}

// GenerateReport generates a report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := r.getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	// Raw counts from the database; percentages are derived here
	summaries, err := r.repo.GetFormatSummarySince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to get format summary: %w", err)
	}

	total := 0
	for _, s := range summaries {
		total += s.EventCount
	}
	if total > 0 {
		for i := range summaries {
			summaries[i].Percentage = (float64(summaries[i].EventCount) / float64(total)) * 100.0
		}
	}

	discontinuities, err := r.repo.CountDiscontinuitiesSince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to count discontinuities: %w", err)
	}

	report := &models.Report{
		Period:          *period,
		Formats:         summaries,
		TotalEvents:     total,
		Discontinuities: discontinuities,
		GeneratedAt:     time.Now(),
	}

	return report, nil
}

// getPeriod calculates the time range for the report
func (r *Reporter) getPeriod(periodType string) (*models.ReportPeriod, error) {
	now := time.Now()
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.Add(24 * time.Hour)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	output := fmt.Sprintf("Scaler Activity Report - %s\n", report.Period.Type)
	output += fmt.Sprintf("Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	output += fmt.Sprintf("Content Changes: %d (discontinuities: %d)\n\n",
		report.TotalEvents, report.Discontinuities)

	if len(report.Formats) == 0 {
		output += "No activity recorded for this period.\n"
		return output
	}

	output += fmt.Sprintf("%-15s %10s %10s\n", "Pixel Format", "Changes", "Percent")
	output += fmt.Sprintf("%s\n", "--------------------------------------")

	for _, f := range report.Formats {
		output += fmt.Sprintf("%-15s %10d %9.1f%%\n",
			f.PixelFormat, f.EventCount, f.Percentage)
	}

	return output
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}
