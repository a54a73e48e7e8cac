// Package store maps a flexible entity model onto a fixed set of secondary
// indexes inside one wide DynamoDB table.
//
// Strata stores every entity in a single table keyed by (model, id) and
// derives up to five secondary index keys from the entity's addressing and
// classification fields. Hierarchy, category, type, alias and external-ID
// lookups all resolve through those derived keys, and archive/soft-delete
// state is encoded as a suffix on the keys so an entity can leave default
// query visibility without leaving the table.
//
// # Entity Addressing
//
// An entity is addressed by its model (kind) and id, and belongs to exactly
// one organizational unit (OU): either the root sentinel "@" or the
// "{model}#{id}" reference of its parent. The OU is computed once at
// creation with [CalculateOU] and is immutable afterwards.
//
// # Derived Index Keys
//
// [IndexEntity] stamps the index-key attributes. IndexOU is always present;
// the alias, class, type and xid keys are present exactly when the source
// classifier field is non-empty. Archived and deleted entities carry the
// "#archived" / "#deleted" suffix segments on every populated key, always in
// that order when both apply.
//
// # Operations
//
//	s := store.New(client, store.DefaultConfig(), logger)
//	s.Put(ctx, entity)                 // create, stamps keys and timestamps
//	s.Get(ctx, "record", id)           // primary-key read
//	s.Delete(ctx, "record", id)        // soft delete, re-suffixes keys
//	s.QueryByOU(ctx, ou, "record", store.QueryOptions{})
//
// Writers racing on the same (model, id) are last-write-wins; this layer
// adds no optimistic locking and no internal retries.
//
// # Errors
//
//   - [ErrValidation] - a write omitted model or id
//   - [ErrNotFound] - update/delete/archive target does not exist
//
// Transport failures from the DynamoDB client are returned unwrapped. A
// point lookup (alias, xid) that matches more than one item is logged
// through the injected logger and still returns the first match.
package store
