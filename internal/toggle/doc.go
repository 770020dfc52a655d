// Package toggle binds a single product or store to one of the store's
// membership collections so views can render and flip it with one call.
//
// Bindings exist for favorite products, favorite stores and the compare
// list. Toggling through an Event stops its propagation, which lets a click
// on a row's star column flip the favorite without also opening the row.
package toggle
