// Package device integrates with the Linux host: it runs util-linux and
// hdparm, queries block-device sizes and opens devices for raw writes.
//
// Everything destructive goes through the wipe package; this package only
// supplies the capabilities the erasure engine consumes.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, std lib
//   - MUST NOT import: internal/wipe, internal/certificate, internal/cli
package device
