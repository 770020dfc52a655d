// Package catalog filters and sorts in-memory chain, store, product and price
// lists.
//
// Apply is the single generic routine: a case-insensitive substring query OR'd
// across designated fields, AND'd predicates, and a stable sort. The entity
// filters are thin bindings of field accessors onto it. Inputs are never
// mutated and Apply never paginates; Paginate is applied to its result when
// a view needs pages.
package catalog
