package store

import (
	"strings"
	"testing"
	"time"

	"github.com/mj1618/autodoc-cli/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func sampleSeq(id, name string, created time.Time) *model.ActionSequence {
	return &model.ActionSequence{
		ID:        id,
		Name:      name,
		CreatedAt: created,
		Actions: []model.Action{
			model.Click{X: 1, Y: 2, Button: model.MouseLeft},
			model.Delay{Seconds: 0.5},
			model.TypeText{Text: "hello"},
		},
	}
}

func TestSaveLoadDelete(t *testing.T) {
	s := testStore(t)
	seq := sampleSeq("seq-1", "login", time.Now().UTC())
	if err := s.Save(seq); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load("seq-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "login" || len(got.Actions) != 3 {
		t.Errorf("loaded = %+v", got)
	}

	if err := s.Delete("seq-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load("seq-1"); err == nil {
		t.Error("load succeeded after delete")
	}
	if err := s.Delete("seq-1"); err == nil {
		t.Error("second delete succeeded, want not-found error")
	}
}

func TestListNewestFirst(t *testing.T) {
	s := testStore(t)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := s.Save(sampleSeq(id, id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}
	all, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d sequences, want 3", len(all))
	}
	if all[0].ID != "new" || all[2].ID != "old" {
		t.Errorf("order = %s, %s, %s; want newest first", all[0].ID, all[1].ID, all[2].ID)
	}
}

func TestResolve(t *testing.T) {
	s := testStore(t)
	now := time.Now().UTC()
	_ = s.Save(sampleSeq("abc123", "login", now))
	_ = s.Save(sampleSeq("abd456", "checkout", now))

	if seq, err := s.Resolve("abc123"); err != nil || seq.Name != "login" {
		t.Errorf("exact id: %v, %v", seq, err)
	}
	if seq, err := s.Resolve("abc"); err != nil || seq.ID != "abc123" {
		t.Errorf("prefix: %v, %v", seq, err)
	}
	if seq, err := s.Resolve("checkout"); err != nil || seq.ID != "abd456" {
		t.Errorf("name: %v, %v", seq, err)
	}
	if _, err := s.Resolve("ab"); err == nil || !strings.Contains(err.Error(), "2 sequences") {
		t.Errorf("ambiguous prefix err = %v", err)
	}
	if _, err := s.Resolve("nope"); err == nil {
		t.Error("unknown ref resolved")
	}
}
