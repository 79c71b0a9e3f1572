package recorder

import "SignalScanner/internal/model"

// Recorder persists completed scans for offline analysis. Records are
// write-only; nothing is read back into the running service.
type Recorder interface {
	RecordScan(snap *model.LatestSnapshot) error
	Close() error
}
