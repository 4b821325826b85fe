package database

import (
	"fmt"
	"time"

	"scalermon/internal/models"
	"scalermon/internal/monitor"

	"github.com/pkg/errors"
)

// Repository handles all database operations for change events. It is
// the monitor's Recorder: the engine writes events through it and never
// reads them back.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// RecordChange inserts a change event built from one status record.
func (r *Repository) RecordChange(rec *monitor.StatusRecord) error {
	event := &models.ChangeEvent{
		Timestamp:        rec.Timestamp,
		Width:            rec.Width,
		Height:           rec.Height,
		BitDepth:         rec.BitDepth,
		PixelFormat:      rec.Format,
		Endian:           rec.Endian,
		DominantRGB:      fmt.Sprintf("%06X", rec.Dominant),
		UnchangedSeconds: rec.Unchanged.Seconds(),
		Discontinuity:    rec.Discontinuity,
		CreatedAt:        time.Now(),
	}
	result := r.db.Create(event)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert change event")
	}
	return nil
}

// RecordError inserts an error log row.
func (r *Repository) RecordError(t time.Time, monErr error) error {
	row := &models.ErrorLog{
		Timestamp: t,
		ErrorMsg:  monErr.Error(),
		CreatedAt: time.Now(),
	}
	result := r.db.Create(row)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// GetEventsSince retrieves all change events since a given time
func (r *Repository) GetEventsSince(since time.Time) ([]*models.ChangeEvent, error) {
	var events []*models.ChangeEvent
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC").Find(&events)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query change events")
	}

	return events, nil
}

// GetFormatSummarySince returns aggregated event counts per pixel
// format since a given time. SQL does the grouping; the reporter
// derives percentages.
func (r *Repository) GetFormatSummarySince(since time.Time) ([]models.FormatSummary, error) {
	var summaries []models.FormatSummary

	result := r.db.Model(&models.ChangeEvent{}).
		Select("pixel_format, COUNT(*) as event_count").
		Where("timestamp >= ?", since).
		Group("pixel_format").
		Order("event_count DESC").
		Scan(&summaries)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query format summary")
	}

	return summaries, nil
}

// CountDiscontinuitiesSince counts geometry/format switches since a
// given time.
func (r *Repository) CountDiscontinuitiesSince(since time.Time) (int, error) {
	var count int64
	result := r.db.Model(&models.ChangeEvent{}).
		Where("timestamp >= ? AND discontinuity = ?", since, true).
		Count(&count)

	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to count discontinuities")
	}

	return int(count), nil
}

// Clear deletes all change events and error logs.
func (r *Repository) Clear() error {
	if result := r.db.Unscoped().Where("1 = 1").Delete(&models.ChangeEvent{}); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear change events")
	}
	if result := r.db.Unscoped().Where("1 = 1").Delete(&models.ErrorLog{}); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear error logs")
	}
	return nil
}
