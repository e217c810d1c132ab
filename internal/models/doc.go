// Package models defines the core domain models for splitvote.
//
// # Models
//
//   - User: a person identified by a device, optionally pointing at a current group
//   - Group: a set of members joined through a short public join code
//   - Expense: an amount submitted to a group that members approve
//
// # Design Principles
//
//  1. **References, not nesting**: expenses point at their group by ID and groups
//     hold member user IDs; User objects are never owned by a Group.
//  2. **Read-side assembly**: GroupView is built explicitly from the stored records
//     at read time; nothing is lazily populated.
//  3. **Ordered sets**: Members and JoinRequests keep insertion order and never
//     contain duplicates. A user ID appears in at most one of them per group.
//
// # Approval
//
// An expense is approved once a strict majority of the group's members, counted at
// the moment of each approval cast, has approved it. The flag only ever moves from
// false to true.
package models
