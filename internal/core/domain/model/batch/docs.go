// Package batch provides the Batch aggregate root: a capacity-bounded group
// of approved orders destined for the same locality, eventually assigned to
// one driver for one delivery run.
//
// The package includes:
//   - Batch: The aggregate root managing capacity, aggregate weight, and lifecycle
//   - Status: A strictly forward state machine (Open -> Assigned -> Delivering -> Delivered)
//   - AssignmentPolicy: The configured cutoff, minimum fill, and deadline rules
//
// Key business rules:
//   - Aggregate weight never exceeds the capacity ceiling
//   - Aggregate weight is overwritten by full recomputation, never adjusted by deltas
//   - Membership freezes once the batch advances past Open
//   - Driver assignment schedules the delivery date via the time-of-day cutoff rule
package batch
