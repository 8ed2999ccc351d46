package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/formtrack/internal/config"
	"git.home.luguber.info/inful/formtrack/internal/eventstore"
	ferrors "git.home.luguber.info/inful/formtrack/internal/foundation/errors"
)

const testPage = `<html><body>
<div class="error-summary">
  <h2 class="error-summary-heading">There was a problem with your application</h2>
  <a id="currentPensionsAmt" href="#currentPensionsAmt">Enter 0 or more</a>
</div>
</body></html>`

func newGlobal(t *testing.T) (*Global, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &Global{Out: &out, ctx: t.Context()}, &out
}

func TestClassifyCmd(t *testing.T) {
	g, out := newGlobal(t)
	cmd := &ClassifyCmd{ID: "psoDay", Message: "Enter a date after 5 April 2006"}
	require.NoError(t, cmd.Run(g, &CLI{}))
	assert.Equal(t, "error-Date:psoDetails:dateOutOfRange\n", out.String())
}

func TestClassifyCmdJSON(t *testing.T) {
	g, out := newGlobal(t)
	cmd := &ClassifyCmd{ID: "currentPensionsAmt", Message: "must be less than 100", JSON: true}
	require.NoError(t, cmd.Run(g, &CLI{}))

	var got struct {
		Event struct {
			Category string `json:"category"`
			Action   string `json:"action"`
			Label    string `json:"label"`
		} `json:"event"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "error-Amount", got.Event.Category)
	assert.Equal(t, "currentPensions", got.Event.Action)
	assert.Equal(t, "amountOutOfRange", got.Event.Label)
}

func TestInitCmd(t *testing.T) {
	t.Chdir(t.TempDir())
	g, out := newGlobal(t)
	root := &CLI{Config: DefaultConfigPath}

	require.NoError(t, (&InitCmd{}).Run(g, root))
	assert.Contains(t, out.String(), DefaultConfigPath)

	cfg, err := config.Load(DefaultConfigPath)
	require.NoError(t, err)
	require.NotNil(t, cfg.Sinks.Store)
	assert.True(t, cfg.Sinks.Store.Enabled)

	err = (&InitCmd{}).Run(g, root)
	require.Error(t, err)
	require.NoError(t, (&InitCmd{Force: true}).Run(g, root))
}

func TestScanCmdDryRun(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	page := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(page, []byte(testPage), 0o600))

	g, out := newGlobal(t)
	cmd := &ScanCmd{Files: []string{page}, DryRun: true}
	require.NoError(t, cmd.Run(g, &CLI{Config: DefaultConfigPath}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "(2 events)")
	assert.Equal(t, "error-Amount:currentPensions:negativeAmount", strings.TrimSpace(lines[1]))
	assert.Equal(t, "error-Relative-Amount:summary:insufficient", strings.TrimSpace(lines[2]))
}

func TestScanCmdMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	g, _ := newGlobal(t)
	cmd := &ScanCmd{Files: []string{"nope.html"}, DryRun: true}
	require.Error(t, cmd.Run(g, &CLI{Config: DefaultConfigPath}))
}

func TestStatsCmd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "events.db")
	store, err := eventstore.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	now := time.Now()
	for _, label := range []string{"mandatory", "mandatory", "negativeAmount"} {
		require.NoError(t, store.Append(t.Context(), eventstore.Record{
			PageViewID: "pv-1",
			Category:   "error-Amount",
			Action:     "currentPensions",
			Label:      label,
			Timestamp:  now,
		}))
	}
	require.NoError(t, store.Close())

	g, out := newGlobal(t)
	cmd := &StatsCmd{DB: dbPath, Top: 10, Format: "markdown"}
	require.NoError(t, cmd.Run(g, &CLI{}))

	text := out.String()
	assert.Contains(t, text, "3 events across 1 page views")
	assert.Contains(t, text, "| 1 | 2 | error-Amount | currentPensions | mandatory |")
	assert.Contains(t, text, "| 2 | 1 | error-Amount | currentPensions | negativeAmount |")
}

func TestStatsCmdWithoutStore(t *testing.T) {
	t.Chdir(t.TempDir())
	g, _ := newGlobal(t)
	err := (&StatsCmd{Top: 10, Format: "text"}).Run(g, &CLI{Config: DefaultConfigPath})
	require.Error(t, err)

	var ce *ferrors.ClassifiedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ferrors.CategoryConfig, ce.Category())
}
