package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/susu3304/pointbot/internal/ledger"
	"github.com/susu3304/pointbot/internal/templates"
)

type fixture struct {
	d       *Dispatcher
	ledger  *ledger.Ledger
	store   *ledger.MemoryStore
	catalog templates.Catalog
}

func newFixture(t *testing.T, initial map[string]int64) *fixture {
	t.Helper()
	store := ledger.NewMemoryStore(initial)
	l := ledger.Open(context.Background(), store, nil)
	catalog := templates.DefaultCatalog()
	return &fixture{
		d:       NewDispatcher("!points", l, templates.NewSelector(catalog), nil),
		ledger:  l,
		store:   store,
		catalog: catalog,
	}
}

func (f *fixture) send(source, text string) []string {
	return f.d.Handle(context.Background(), source, text)
}

func TestHandleIgnoresNonCommands(t *testing.T) {
	f := newFixture(t, nil)
	for _, text := range []string{"", "hello", "points bob 5", "!pointsbob 5", "say !points bob 5"} {
		assert.Nil(t, f.send("alice", text), "text %q", text)
	}
	assert.Equal(t, 0, f.store.Saves())
}

func TestHandleHelp(t *testing.T) {
	f := newFixture(t, nil)
	want := []string{"Try !points [(<nick> <points>) | (stats [<nick>]) | (remove <nick>)]"}
	assert.Equal(t, want, f.send("alice", "!points"))
	assert.Equal(t, want, f.send("alice", "  !points   "))
}

func TestHandleHelpUsesConfiguredPrefix(t *testing.T) {
	l := ledger.Open(context.Background(), ledger.NewMemoryStore(nil), nil)
	d := NewDispatcher("!karma", l, templates.NewSelector(templates.DefaultCatalog()), nil)

	lines := d.Handle(context.Background(), "alice", "!karma")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "!karma")
	assert.Nil(t, d.Handle(context.Background(), "alice", "!points"))
}

func TestHandleGive(t *testing.T) {
	f := newFixture(t, nil)

	lines := f.send("alice", "!points bob 5")
	assert.Equal(t, []string{"alice gave 5 points to bob!"}, lines)
	assert.Equal(t, int64(5), f.ledger.Get("bob"))
	assert.Equal(t, map[string]int64{"bob": 5}, f.store.Saved())
}

func TestHandleTake(t *testing.T) {
	f := newFixture(t, map[string]int64{"bob": 10})

	lines := f.send("alice", "!points bob -3")
	assert.Equal(t, []string{"alice took 3 points from bob!"}, lines)
	assert.Equal(t, int64(7), f.ledger.Get("bob"))
}

func TestHandleAdjustRotatesPairs(t *testing.T) {
	f := newFixture(t, nil)

	want := []string{
		"alice gave 2 points to bob!",
		"2 points from bob!",
		"bob is the proud owner of 1 more point",
		"bob is now 1 point poorer",
		"alice stripped bob of 4 precious points",
		"alice gave 2 points to bob!",
	}
	inputs := []string{"bob 2", "bob -2", "bob 1", "bob -1", "bob -4", "bob 2"}
	for i, in := range inputs {
		lines := f.send("alice", "!points "+in)
		require.Len(t, lines, 1)
		assert.Equal(t, want[i], lines[0], "input %q", in)
	}
	assert.Equal(t, int64(-2), f.ledger.Get("bob"))
}

func TestHandlePluralization(t *testing.T) {
	tests := []struct {
		value int64
		want  string
	}{
		{1, "alice gave 1 point to bob!"},
		{0, "alice gave 0 points to bob!"},
		{-2, "alice took 2 points from bob!"},
		{-1, "alice took 1 point from bob!"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.value), func(t *testing.T) {
			f := newFixture(t, nil)
			lines := f.send("alice", fmt.Sprintf("!points bob %d", tt.value))
			assert.Equal(t, []string{tt.want}, lines)
		})
	}
}

func TestHandleSelfAdjustRefused(t *testing.T) {
	f := newFixture(t, map[string]int64{"alice": 1})

	for i := 0; i < len(f.catalog.SelfAdjust)+1; i++ {
		lines := f.send("alice", "!points alice 100")
		want := f.catalog.SelfAdjust[i%len(f.catalog.SelfAdjust)]
		assert.Equal(t, []string{want}, lines)
	}
	assert.Equal(t, int64(1), f.ledger.Get("alice"))
	assert.Equal(t, 0, f.store.Saves())
}

func TestHandleSelfRemovalRefused(t *testing.T) {
	f := newFixture(t, map[string]int64{"alice": 1})

	assert.Equal(t, []string{f.catalog.SelfRemoval[0]}, f.send("alice", "!points remove alice"))
	assert.Equal(t, []string{f.catalog.SelfRemoval[1]}, f.send("alice", "!points remove alice"))
	assert.Equal(t, map[string]int64{"alice": 1}, f.ledger.Snapshot())
	assert.Equal(t, 0, f.store.Saves())
}

func TestHandleSelfTargetIsCaseSensitive(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, []string{"alice gave 1 point to Alice!"}, f.send("alice", "!points Alice 1"))
}

func TestHandleRemove(t *testing.T) {
	f := newFixture(t, map[string]int64{"bob": 3, "carol": 1})

	assert.Equal(t, []string{"alice removed record of points for bob"}, f.send("alice", "!points remove bob"))
	assert.Equal(t, map[string]int64{"carol": 1}, f.store.Saved())
}

func TestHandleRemoveMissing(t *testing.T) {
	f := newFixture(t, map[string]int64{"carol": 1})

	assert.Equal(t, []string{"No points recorded for bob!"}, f.send("alice", "!points remove bob"))
	assert.Equal(t, map[string]int64{"carol": 1}, f.ledger.Snapshot())
	assert.Equal(t, 0, f.store.Saves())
}

func TestHandleUsage(t *testing.T) {
	f := newFixture(t, nil)

	assert.Equal(t, []string{"Use the form: !points remove <nick>"}, f.send("alice", "!points remove"))
	assert.Equal(t, []string{"Use the format: !points <nick> <value>"}, f.send("alice", "!points bob lots"))
	assert.Equal(t, []string{"Use the format: !points <nick> <value>"}, f.send("alice", "!points bob"))
	assert.Equal(t, []string{"Use the format: !points <nick> <value>"}, f.send("alice", "!points bob 1 2"))
	assert.Equal(t, 0, f.ledger.Len())
}

func TestHandleStats(t *testing.T) {
	f := newFixture(t, map[string]int64{"a": 5, "b": 5, "c": 10})

	assert.Equal(t, []string{"Top 20", "10 - c", "5 - a", "5 - b"}, f.send("alice", "!points stats"))
}

func TestHandleStatsFiltered(t *testing.T) {
	f := newFixture(t, map[string]int64{"alice": 3, "alex": 7, "bob": 2})

	assert.Equal(t, []string{"7 - alex", "3 - alice"}, f.send("bob", "!points stats al"))
	assert.Equal(t, []string{"No recorded points"}, f.send("bob", "!points stats zed"))
}

func TestHandleStatsEmpty(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, []string{"No recorded points"}, f.send("alice", "!points stats"))
}

func TestHandleStatsCapsAtTop(t *testing.T) {
	initial := make(map[string]int64)
	for i := 0; i < TopCount+5; i++ {
		initial[fmt.Sprintf("nick%02d", i)] = int64(i)
	}
	f := newFixture(t, initial)

	lines := f.send("alice", "!points stats")
	require.Len(t, lines, TopCount+1)
	assert.Equal(t, "24 - nick24", lines[1])
	assert.Equal(t, "5 - nick05", lines[TopCount])
}

func TestHandleStatsDoesNotMaterializeEntries(t *testing.T) {
	f := newFixture(t, nil)
	f.send("alice", "!points stats bob")
	f.send("alice", "!points remove bob")
	assert.Equal(t, 0, f.ledger.Len())
}

func TestHandleConfirmsWhenSaveFails(t *testing.T) {
	f := newFixture(t, nil)
	f.store.SaveErr = errors.New("read-only file system")

	assert.Equal(t, []string{"alice gave 5 points to bob!"}, f.send("alice", "!points bob 5"))
	assert.Equal(t, int64(5), f.ledger.Get("bob"))
	assert.Empty(t, f.store.Saved())

	assert.Equal(t, []string{"alice removed record of points for bob"}, f.send("alice", "!points remove bob"))
	assert.Equal(t, 0, f.ledger.Len())
}

func TestHandleTrimsSource(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, []string{f.catalog.SelfAdjust[0]}, f.send(" alice ", "!points alice 1"))
}

func TestExecuteSlashCommands(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	assert.Equal(t, []string{"alice gave 3 points to bob!"}, f.d.Execute(ctx, "alice", Command{Kind: KindAdjust, Target: "bob", Value: 3}))
	assert.Equal(t, []string{"Top 20", "3 - bob"}, f.d.Execute(ctx, "alice", Command{Kind: KindStats}))
	assert.Equal(t, []string{"Use the form: !points remove <nick>"}, f.d.Execute(ctx, "alice", Command{Kind: KindRemove}))
	assert.Equal(t, []string{"alice removed record of points for bob"}, f.d.Execute(ctx, "alice", Command{Kind: KindRemove, Target: "bob"}))
}

func TestExecuteRecoversPanics(t *testing.T) {
	d := NewDispatcher("!points", nil, templates.NewSelector(templates.DefaultCatalog()), nil)
	lines := d.Execute(context.Background(), "alice", Command{Kind: KindStats})
	assert.Equal(t, []string{templates.InternalError}, lines)
}
