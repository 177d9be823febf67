// Package services provides domain services that orchestrate business operations
// across multiple domain entities in the consolidation system. It implements
// business workflows that don't naturally belong to a single aggregate root.
//
// The package includes:
//   - WeightResolver: computes an order's shippable weight from its line items
//   - Allocator: the bin-packing core that picks an open batch for an order
//
// Domain services coordinate between aggregates, implementing business logic that
// spans multiple bounded contexts following Domain-Driven Design principles.
package services
