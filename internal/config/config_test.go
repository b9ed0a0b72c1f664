package config

import "testing"

func TestParseVars(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "empty",
			pairs: nil,
			want:  map[string]string{},
		},
		{
			name:  "simple pairs",
			pairs: []string{"binary=/opt/sim/bin/sim", "tolerance=1e-8"},
			want:  map[string]string{"binary": "/opt/sim/bin/sim", "tolerance": "1e-8"},
		},
		{
			name:  "value containing equals",
			pairs: []string{"args=-n=4"},
			want:  map[string]string{"args": "-n=4"},
		},
		{
			name:    "missing equals",
			pairs:   []string{"justakey"},
			wantErr: true,
		},
		{
			name:    "empty key",
			pairs:   []string{"=value"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVars(tt.pairs)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d vars, got %d", len(tt.want), len(got))
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("expected %s=%q, got %q", k, v, got[k])
				}
			}
		})
	}
}

func TestConfig_Apply(t *testing.T) {
	t.Run("empty flags keep defaults", func(t *testing.T) {
		cfg := New()
		if err := cfg.Apply(Flags{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TestRoot != DefaultTestRoot {
			t.Errorf("expected test root %s, got %s", DefaultTestRoot, cfg.TestRoot)
		}
		if cfg.WorkRoot != DefaultWorkRoot {
			t.Errorf("expected work root %s, got %s", DefaultWorkRoot, cfg.WorkRoot)
		}
		if cfg.Phases != DefaultPhases {
			t.Errorf("expected phases %s, got %s", DefaultPhases, cfg.Phases)
		}
	})

	t.Run("flags override defaults", func(t *testing.T) {
		cfg := New()
		err := cfg.Apply(Flags{
			TestRoot: "/suite",
			WorkRoot: "/scratch",
			Phases:   "s",
			Vars:     []string{"k=v"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.TestRoot != "/suite" || cfg.WorkRoot != "/scratch" || cfg.Phases != "s" {
			t.Errorf("flags not applied: %+v", cfg)
		}
		if cfg.Vars["k"] != "v" {
			t.Errorf("vars not applied: %+v", cfg.Vars)
		}
	})

	t.Run("invalid vars surface error", func(t *testing.T) {
		cfg := New()
		if err := cfg.Apply(Flags{Vars: []string{"broken"}}); err == nil {
			t.Fatal("expected error for invalid var")
		}
	})
}
