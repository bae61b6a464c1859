package diskstegdrivefx

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zaptest"

	"github.com/arman-k/stegdrive"
)

func TestModule(t *testing.T) {
	tests := []struct {
		name   string
		config func(dir string) Config
	}{
		{"defaults", func(dir string) Config { return Config{DataDir: dir} }},
		{"cached zstd", func(dir string) Config {
			return Config{DataDir: dir, Codec: "zstd", CacheSize: 10, Threshold: 20_000}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataDir := filepath.Join(t.TempDir(), "data")
			cfg := tt.config(dataDir)
			cfg.StagingDir = t.TempDir()

			var client *stegdrive.Client
			app := fxtest.New(t,
				fx.Supply(cfg, zaptest.NewLogger(t)),
				Module,
				fx.Populate(&client),
			)
			app.RequireStart()
			defer app.RequireStop()

			ctx := context.Background()
			m, err := client.UploadReader(ctx, "notes.txt", strings.NewReader(strings.Repeat("note ", 10_000)))
			if err != nil {
				t.Fatalf("UploadReader() error = %v", err)
			}
			if _, err := os.Stat(filepath.Join(dataDir, "notes.txt", "manifest.json")); err != nil {
				t.Errorf("manifest not on disk: %v", err)
			}
			if cfg.Codec != "" && m.Codec != cfg.Codec {
				t.Errorf("Manifest.Codec = %q, want %q", m.Codec, cfg.Codec)
			}

			var out bytes.Buffer
			if _, err := client.DownloadTo(ctx, "notes.txt", &out); err != nil {
				t.Fatalf("DownloadTo() error = %v", err)
			}
			if out.Len() != 50_000 {
				t.Errorf("DownloadTo() wrote %d bytes, want 50000", out.Len())
			}
		})
	}
}

func TestModule_UnknownCodec(t *testing.T) {
	app := fx.New(
		fx.NopLogger,
		fx.Supply(Config{DataDir: t.TempDir(), Codec: "rar"}, zaptest.NewLogger(t)),
		Module,
		fx.Invoke(func(*stegdrive.Client) {}),
	)
	if app.Err() == nil {
		t.Error("fx.New() with unknown codec should fail")
	}
}
