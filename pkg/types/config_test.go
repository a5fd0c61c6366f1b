package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "valid jsonl config with grandparents depth",
			config:  Config{Backend: "jsonl", DataDir: "/tmp/data", Depth: 4},
			wantErr: nil,
		},
		{
			name:    "sqlite with empty DataDir is valid at config level",
			config:  Config{Backend: "sqlite", DataDir: ""},
			wantErr: nil,
		},
		{
			name:    "depth five is rejected",
			config:  Config{Backend: "yaml", Depth: 5},
			wantErr: ErrDepthInvalid,
		},
		{
			name:    "negative depth is rejected",
			config:  Config{Backend: "yaml", Depth: -1},
			wantErr: ErrDepthInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigEffectiveDepth(t *testing.T) {
	if got := (Config{}).EffectiveDepth(); got != DefaultDepth {
		t.Fatalf("expected default depth %d, got %d", DefaultDepth, got)
	}
	if got := (Config{Depth: 4}).EffectiveDepth(); got != 4 {
		t.Fatalf("expected depth 4, got %d", got)
	}
}
