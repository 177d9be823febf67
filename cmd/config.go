package cmd

import "time"

// Config carries everything the application reads from the environment.
type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// CapacityCeiling is the fixed payload ceiling for every new batch.
	CapacityCeiling float64

	// FitPolicy selects the batch allocation strategy, "tightest-fit" or "fifo".
	FitPolicy string

	// CutoffHour is the time-of-day boundary for delivery date scheduling.
	CutoffHour int

	// MinFillRatio is the fraction of capacity a batch must reach before
	// driver assignment.
	MinFillRatio float64

	// AssignmentDeadline waives the minimum fill gate for old batches.
	AssignmentDeadline time.Duration

	// LockTimeout bounds how long a writer waits for a locality lock.
	LockTimeout time.Duration

	// AllocationMaxRetries bounds the approve retry loop on lock contention.
	AllocationMaxRetries uint64
}
