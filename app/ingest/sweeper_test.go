package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPruner struct {
	cutoff string
	err    error
}

func (p *recordingPruner) DeleteCurrentBefore(_ context.Context, cutoff string) (int64, error) {
	p.cutoff = cutoff
	if p.err != nil {
		return 0, p.err
	}
	return 4, nil
}

func TestSweepCutoff(t *testing.T) {
	tests := []struct {
		name   string
		window time.Duration
		want   string
	}{
		{name: "default window", window: 0, want: "2023-07-03 06:00:00"},
		{name: "custom window", window: 90 * time.Minute, want: "2023-07-03 10:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pruner := &recordingPruner{}
			now := func() time.Time { return date("2023-07-03 12:00:00") }

			deleted, err := NewSweeper(pruner, Config{RetentionWindow: tt.window}, WithClock(now)).Sweep(context.Background())
			require.NoError(t, err)
			assert.Equal(t, int64(4), deleted)
			assert.Equal(t, tt.want, pruner.cutoff)
		})
	}
}

func TestSweepError(t *testing.T) {
	pruner := &recordingPruner{err: errors.New("locked")}

	_, err := NewSweeper(pruner, Config{}).Sweep(context.Background())
	assert.EqualError(t, err, "locked")
}
