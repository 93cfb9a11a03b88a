package simtui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeProvider struct {
	snapshot Snapshot
}

func (f fakeProvider) Snapshot() Snapshot { return f.snapshot }

func TestModelViewRendersSnapshot(t *testing.T) {
	provider := fakeProvider{snapshot: Snapshot{
		Engine:                    "tlsm",
		TotalPoints:               100,
		TotalWrites:               140,
		AverageWriteAmplification: 1.4,
		LastFanin:                 3,
		CyclesCompleted:           5,
	}}
	m := NewModel(provider)

	view := m.View()
	if !strings.Contains(view, "tlsm") {
		t.Errorf("View() missing engine name: %q", view)
	}
	if !strings.Contains(view, "140") {
		t.Errorf("View() missing write count: %q", view)
	}
}

func TestModelUpdateRefreshesOnTick(t *testing.T) {
	provider := &mutableProvider{snapshot: Snapshot{Engine: "lsm", TotalWrites: 1}}
	m := NewModel(provider)

	provider.snapshot.TotalWrites = 99
	updated, cmd := m.Update(tickMsg(time.Now()))
	nm := updated.(Model)

	if nm.snapshot.TotalWrites != 99 {
		t.Errorf("TotalWrites = %d, want 99 after tick", nm.snapshot.TotalWrites)
	}
	if cmd == nil {
		t.Error("expected a follow-up tick command")
	}
}

func TestModelQuitsOnQKey(t *testing.T) {
	provider := fakeProvider{snapshot: Snapshot{Engine: "hybrid"}}
	m := NewModel(provider)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected a command from quit key")
	}
}

type mutableProvider struct {
	snapshot Snapshot
}

func (p *mutableProvider) Snapshot() Snapshot { return p.snapshot }
