// Package services defines the shared error taxonomy for pipeline stages
// and the external helpers they invoke.
//
// Errors are tagged with sentinel markers so callers can classify a failure
// (transient I/O, external tool, validation, missing record) without parsing
// message text.
package services
