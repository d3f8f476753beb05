package toolkit

import (
	"encoding/json"
	"time"

	"github.com/user/netkit/internal/model"
	"github.com/user/netkit/internal/util"
)

// Journal persists history entries.
type Journal interface {
	Save(entry *model.HistoryEntry) error
}

// JournalRecorder returns a Recorder that stores every result in j. Save
// failures are logged and never affect the operation.
func JournalRecorder(j Journal) Recorder {
	return func(r Record) {
		payload, err := json.Marshal(r.Result)
		if err != nil {
			util.Warn("Failed to encode %s result for history: %v", r.Operation, err)
			return
		}
		entry := &model.HistoryEntry{
			Operation:  string(r.Operation),
			Target:     r.Target,
			Success:    r.Success,
			Error:      r.Error,
			DurationMs: r.Duration.Milliseconds(),
			Payload:    string(payload),
			CreatedAt:  time.Now().UTC(),
		}
		if err := j.Save(entry); err != nil {
			util.Warn("Failed to save %s result to history: %v", r.Operation, err)
		}
	}
}
