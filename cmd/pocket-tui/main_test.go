package main

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dd0wney/cluso-pockets/pkg/pocket"
	"github.com/dd0wney/cluso-pockets/pkg/topology"
)

func testIndex(t *testing.T) *pocket.Index {
	t.Helper()
	snap := &topology.Snapshot{
		Entities: []topology.Entity{{EntityID: "a"}, {EntityID: "b"}, {EntityID: "c"}},
		Edges: []topology.EdgeRecord{
			{EntityA: "a", EntityB: "b", Codes: []topology.CurvatureCode{topology.Concave}},
		},
	}
	ix, err := pocket.Analyze(snap)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return ix
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func TestTabCyclesViews(t *testing.T) {
	ix := testIndex(t)
	m := initialModel(func() (*pocket.Index, error) { return ix, nil }, ix, nil)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.currentView != pocketsView {
		t.Fatalf("view = %d, want pockets", m.currentView)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.currentView != lookupView || !m.lookupInput.Focused() {
		t.Fatalf("view = %d focused=%v, want focused lookup", m.currentView, m.lookupInput.Focused())
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.currentView != pocketsView || m.lookupInput.Focused() {
		t.Fatalf("shift+tab left view %d focused=%v", m.currentView, m.lookupInput.Focused())
	}
}

func TestLookup(t *testing.T) {
	ix := testIndex(t)
	m := initialModel(func() (*pocket.Index, error) { return ix, nil }, ix, nil)
	m.switchView(lookupView)

	m.lookupInput.SetValue("b")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if got := m.View(); !strings.Contains(got, "b is in pocket 0") {
		t.Errorf("view missing lookup result:\n%s", got)
	}

	m.lookupInput.SetValue("c")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.View(); !strings.Contains(got, "c is not in a pocket") {
		t.Errorf("view missing no-pocket result:\n%s", got)
	}
}

func TestReloadFailureKeepsIndex(t *testing.T) {
	ix := testIndex(t)
	m := initialModel(func() (*pocket.Index, error) { return nil, errors.New("boom") }, ix, nil)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})

	if m.index != ix {
		t.Error("failed reload replaced the index")
	}
	if !m.messageErr || !strings.Contains(m.message, "boom") {
		t.Errorf("message = %q err=%v", m.message, m.messageErr)
	}
}

func TestPocketsTableRows(t *testing.T) {
	ix := testIndex(t)
	m := initialModel(func() (*pocket.Index, error) { return ix, nil }, ix, nil)

	rows := m.pocketTable.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0][1] != "2" || rows[0][3] != "a, b" {
		t.Errorf("row = %v", rows[0])
	}
}

func TestLargest(t *testing.T) {
	ps := []pocket.Pocket{
		{Index: 0, Entities: []string{"a"}},
		{Index: 1, Entities: []string{"b", "c", "d"}},
		{Index: 2, Entities: []string{"e", "f"}},
	}
	got := largest(ps, 2)
	if len(got) != 2 || got[0].Index != 1 || got[1].Index != 2 {
		t.Errorf("largest = %+v", got)
	}
	if ps[0].Index != 0 {
		t.Error("largest reordered its input")
	}
}
