// Package order provides domain entities and business logic for customer
// orders in the batch consolidation system. It implements the Order aggregate
// root with two independent status dimensions and their transition rules.
//
// The package includes:
//   - Order: The aggregate root managing identity, weight, line items, and batch membership
//   - ApprovalStatus: Pending -> Approved / Rejected, driven by the approval workflow
//   - DeliveryStatus: Pending -> Assigned -> Delivering -> Delivered, driven by batch cascade
//   - LineItem: An immutable-after-approval order line
//
// Key business rules:
//   - An order references a batch only while approved; rejection severs the reference
//   - A referenced batch's locality must equal the order's locality
//   - Delivery status only progresses through the owning batch's lifecycle cascade
//   - Order weight is recomputed from line items, never adjusted by deltas
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
