package certificate

import (
	"fmt"
	"strings"

	"github.com/mrz1836/wipecert/internal/clock"
	"github.com/mrz1836/wipecert/internal/constants"
	"github.com/mrz1836/wipecert/internal/domain"
)

// Builder turns a wipe outcome into an unsigned certificate.
type Builder struct {
	clock clock.Clock
}

// NewBuilder returns a Builder that stamps records with c.
// A nil clock uses the system clock.
func NewBuilder(c clock.Clock) *Builder {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Builder{clock: c}
}

// Build returns an unsigned record for the outcome. Failed wipes produce a
// complete record with status "Failure".
//
// The report ID and timestamp come from a single clock read. Two wipes of
// the same serial completing in the same second share a report ID.
func (b *Builder) Build(drive domain.DriveDescriptor, method domain.WipeMethod, outcome domain.WipeOutcome) Record {
	completed := b.clock.Now().UTC()

	status := constants.StatusFailure
	if outcome.Success {
		status = constants.StatusSuccess
	}

	return Record{
		ReportID:  ReportID(drive.Serial, completed.Unix()),
		Timestamp: completed.Format(constants.TimestampLayout),
		DriveInfo: DriveInfo{
			Model:  drive.Model,
			Serial: drive.Serial,
			Size:   drive.Size,
			Path:   drive.Path,
		},
		WipeDetails: WipeDetails{
			Method:   method.String(),
			Standard: constants.Standard,
			Status:   status,
			Details:  outcome.Detail,
		},
	}
}

// ReportID derives WIPE-<serial>-<unix seconds>. A missing serial becomes
// NOSERIAL; characters unsafe in file names become '_'.
func ReportID(serial string, unixSeconds int64) string {
	return fmt.Sprintf("%s-%s-%d", constants.ReportIDPrefix, reportSerial(serial), unixSeconds)
}

func reportSerial(serial string) string {
	serial = strings.TrimSpace(serial)
	if serial == "" || serial == constants.NotAvailable {
		return constants.NoSerial
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, serial)
}
