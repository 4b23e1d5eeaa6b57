package storage

import (
	"context"
	"encoding/hex"
	"time"

	"docshift/internal/include"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// Recorder adapts a HistoryStore to include.Recorder.
type Recorder struct {
	store HistoryStore
	now   func() time.Time
}

var _ include.Recorder = (*Recorder)(nil)

func NewRecorder(store HistoryStore) *Recorder {
	return &Recorder{store: store, now: time.Now}
}

func (r *Recorder) Record(ctx context.Context, res include.Result) error {
	return r.store.Save(ctx, NewRecord(res, r.now()))
}

// NewRecord converts an include result into a ledger entry.
func NewRecord(res include.Result, at time.Time) Record {
	rec := Record{
		ID:        uuid.NewString(),
		Path:      res.Path,
		Status:    string(res.Status),
		Headings:  res.Headings,
		CreatedAt: at,
	}
	if res.Source != nil {
		sum := blake3.Sum256(res.Source)
		rec.Digest = hex.EncodeToString(sum[:])
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	return rec
}
