// Package domain provides the shared types that flow between the erasure
// engine, the certificate subsystem and the CLI.
//
// Values here are plain data. DriveDescriptor comes from the enumerator and is
// never modified; WipeOutcome is built once per wipe through its constructors.
package domain
