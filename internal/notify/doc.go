// Package notify turns errors and status messages into short-lived
// notifications for the command bar.
//
// Routing by error kind:
//
//	validation (inline)    not notified; the view shows the field error
//	validation (global)    error notification
//	network, server        error notification, retryable
//	auth, authorization    AuthHandler only
//	not found              warning notification
//	anything else          error notification
//
// Notifications expire after a per-type duration and can be dismissed early.
package notify
