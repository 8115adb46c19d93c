package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"go.dot.industries/bootvault/internal/vaultspec"
)

// recorderUI captures UI events for assertions.
type recorderUI struct {
	infos []string
	warns []string
}

func (r *recorderUI) Info(msg string) { r.infos = append(r.infos, msg) }
func (r *recorderUI) Warn(msg string) { r.warns = append(r.warns, msg) }

func TestResolver_WorkRequested(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want bool
	}{
		{name: "all empty", opts: Options{}, want: false},
		{name: "pre-parsed only", opts: Options{VaultItems: vaultspec.Spec{"v": {"i"}}}, want: true},
		{name: "json only", opts: Options{VaultJSON: `{"v":"i"}`}, want: true},
		{name: "file only", opts: Options{VaultFile: "/tmp/spec.json"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewResolver(tt.opts).WorkRequested(); got != tt.want {
				t.Errorf("WorkRequested() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolver_CheckConflicts(t *testing.T) {
	tests := []struct {
		name        string
		opts        Options
		wantIgnored []string // names the single warning must mention; empty means no warning
	}{
		{
			name: "single input warns nothing",
			opts: Options{VaultJSON: `{"v":"i"}`},
		},
		{
			name: "items beat json",
			opts: Options{
				VaultItems: vaultspec.Spec{"v": {"i"}},
				VaultJSON:  `{"v":"i"}`,
			},
			wantIgnored: []string{"vault-json"},
		},
		{
			name: "items beat file",
			opts: Options{
				VaultItems: vaultspec.Spec{"v": {"i"}},
				VaultFile:  "/tmp/spec.json",
			},
			wantIgnored: []string{"vault-file"},
		},
		{
			name: "json beats file",
			opts: Options{
				VaultJSON: `{"v":"i"}`,
				VaultFile: "/tmp/spec.json",
			},
			wantIgnored: []string{"vault-file"},
		},
		{
			name: "all three set warns once naming both ignored inputs",
			opts: Options{
				VaultItems: vaultspec.Spec{"v": {"i"}},
				VaultJSON:  `{"v":"i"}`,
				VaultFile:  "/tmp/spec.json",
			},
			wantIgnored: []string{"vault-json", "vault-file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorderUI{}
			NewResolver(tt.opts).CheckConflicts(rec)

			if len(tt.wantIgnored) == 0 {
				if len(rec.warns) != 0 {
					t.Fatalf("expected no warnings, got %v", rec.warns)
				}
				return
			}

			if len(rec.warns) != 1 {
				t.Fatalf("got %d warnings %v, want exactly 1", len(rec.warns), rec.warns)
			}
			for _, ignored := range tt.wantIgnored {
				if !strings.Contains(rec.warns[0], ignored) {
					t.Errorf("warning = %q, want mention of ignored %q", rec.warns[0], ignored)
				}
			}
		})
	}
}

func TestResolver_SpecPrecedence(t *testing.T) {
	preParsed := vaultspec.Spec{"pre": {"parsed"}}

	jsonPath := filepath.Join(t.TempDir(), "spec.json")
	if err := os.WriteFile(jsonPath, []byte(`{"file": "item"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts Options
		want vaultspec.Spec
	}{
		{
			name: "pre-parsed wins over all",
			opts: Options{VaultItems: preParsed, VaultJSON: `{"json": "item"}`, VaultFile: jsonPath},
			want: preParsed,
		},
		{
			name: "json wins over file",
			opts: Options{VaultJSON: `{"json": "item"}`, VaultFile: jsonPath},
			want: vaultspec.Spec{"json": {"item"}},
		},
		{
			name: "file when alone",
			opts: Options{VaultFile: jsonPath},
			want: vaultspec.Spec{"file": {"item"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewResolver(tt.opts).Spec()
			if err != nil {
				t.Fatalf("Spec() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Spec() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolver_SpecMemoized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.json")
	if err := os.WriteFile(path, []byte(`{"v": "i"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(Options{VaultFile: path})

	first, err := r.Spec()
	if err != nil {
		t.Fatalf("Spec() error = %v", err)
	}

	// Removing the file must not matter: resolution already happened.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	second, err := r.Spec()
	if err != nil {
		t.Fatalf("second Spec() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("memoized Spec() = %v, want %v", second, first)
	}
}

func TestResolver_MalformedJSONIsFatal(t *testing.T) {
	r := NewResolver(Options{VaultJSON: `{"v": `})

	if _, err := r.Spec(); err == nil {
		t.Fatal("expected parse error, got nil")
	}

	// The error is memoized too.
	if _, err := r.Spec(); err == nil {
		t.Fatal("expected memoized parse error, got nil")
	}
}
