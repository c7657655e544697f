package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLbHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "op-123/Export",
			level:   slog.LevelInfo,
			message: "export complete",
			want:    "2024-06-15T14:30:45Z\tINFO\top-123/Export\texport complete\n",
		},
		{
			name:    "debug level",
			opID:    "op-456/Import",
			level:   slog.LevelDebug,
			message: "kept newer local entry",
			want:    "2024-06-15T14:30:45Z\tDEBUG\top-456/Import\tkept newer local entry\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789/Import",
			level:   slog.LevelInfo,
			message: "import complete",
			attrs:   []slog.Attr{slog.Int("imported", 12), slog.Int("skipped", 3)},
			want:    "2024-06-15T14:30:45Z\tINFO\top-789/Import\timport complete\timported=12\tskipped=3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &lbHandler{w: &buf, opID: tt.opID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestLbHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &lbHandler{w: &buf, opID: "op-1"}

	h2 := h.WithAttrs([]slog.Attr{slog.String("box", "programs")}).(*lbHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "restored", 0)
	r.AddAttrs(slog.String("key", "p1"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "box=programs") {
		t.Errorf("expected pre-set attr box=programs, got: %q", got)
	}
	if !strings.Contains(got, "key=p1") {
		t.Errorf("expected record attr key=p1, got: %q", got)
	}
}

func TestLbHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	h := &lbHandler{w: &buf, opID: "op-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*lbHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("derived handler attrs = %d, want 2", len(h2.attrs))
	}
}
