package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionMetrics tracks statistics about one ingestion run
type IngestionMetrics struct {
	mu               sync.RWMutex
	StartTime        time.Time
	Duration         time.Duration
	TotalRows        int
	Inserted         int
	Updated          int
	Duplicates       int
	ValidationErrors int
	Errors           int
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *IngestionMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.TotalRows = 0
	m.Inserted = 0
	m.Updated = 0
	m.Duplicates = 0
	m.ValidationErrors = 0
	m.Errors = 0
}

// RecordLoaded sets the number of rows read from the source
func (m *IngestionMetrics) RecordLoaded(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalRows = n
}

// RecordUpserted adds the outcome of one stored batch
func (m *IngestionMetrics) RecordUpserted(inserted, updated int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Inserted += inserted
	m.Updated += updated
}

// RecordDuplicate increments duplicate count
func (m *IngestionMetrics) RecordDuplicate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duplicates++
}

// RecordError increments error count
func (m *IngestionMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// RecordValidationError increments validation error count
func (m *IngestionMetrics) RecordValidationError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidationErrors++
}

// Finish stamps the run duration
func (m *IngestionMetrics) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duration = time.Since(m.StartTime)
}

// Stored returns the number of rows written
func (m *IngestionMetrics) Stored() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Inserted + m.Updated
}

// String returns a formatted string representation of metrics
func (m *IngestionMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := float64(0)
	if m.TotalRows > 0 {
		successRate = float64(m.Inserted+m.Updated) / float64(m.TotalRows) * 100
	}

	return fmt.Sprintf(
		"IngestionMetrics{Total=%d, Inserted=%d, Updated=%d (%.1f%%), Duplicates=%d, ValidationErrors=%d, Errors=%d, Duration=%v}",
		m.TotalRows,
		m.Inserted,
		m.Updated,
		successRate,
		m.Duplicates,
		m.ValidationErrors,
		m.Errors,
		m.Duration,
	)
}
