package memorystegdrivefx

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zaptest"

	"github.com/arman-k/stegdrive"
	"github.com/arman-k/stegdrive/internal/store/memstore"
)

func TestModule(t *testing.T) {
	var (
		client *stegdrive.Client
		st     *memstore.Store
	)
	app := fxtest.New(t,
		fx.Supply(zaptest.NewLogger(t)),
		Module,
		fx.Populate(&client, &st),
	)
	app.RequireStart()

	ctx := context.Background()
	if _, err := client.UploadReader(ctx, "greeting", strings.NewReader("hello")); err != nil {
		t.Fatalf("UploadReader() error = %v", err)
	}
	if st.Len() != 2 {
		t.Errorf("store holds %d objects, want document + manifest", st.Len())
	}

	var out bytes.Buffer
	if _, err := client.DownloadTo(ctx, "greeting", &out); err != nil {
		t.Fatalf("DownloadTo() error = %v", err)
	}
	if out.String() != "hello" {
		t.Errorf("DownloadTo() = %q, want %q", out.String(), "hello")
	}

	app.RequireStop()
	if _, err := client.List(ctx); !errors.Is(err, stegdrive.ErrClosed) {
		t.Errorf("List() after stop error = %v, want ErrClosed", err)
	}
}
