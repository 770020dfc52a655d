// Package geo provides distance math and a small location provider
// abstraction.
//
// Distance uses the haversine formula over a spherical Earth. A Locator
// resolves the user's position; the terminal app has no GPS, so
// StaticLocator answers from the configured default location and reports the
// same PermissionDenied, PositionUnavailable and Timeout failures a device
// provider would. Tracker remembers the last fix and can poll a Locator.
package geo
