package billing

import (
	"testing"
	"time"
)

func TestInMemoryStoreAddAndGet(t *testing.T) {
	store := NewInMemoryRuleStore()
	rule := percentDiscount("r1", "Promo", 1, 10)

	if err := store.Add(rule); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if rule.CreatedAt.IsZero() || rule.UpdatedAt.IsZero() {
		t.Error("Expected Add to set timestamps")
	}

	got, err := store.Get("r1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Promo" {
		t.Errorf("Expected rule name to round-trip, got %q", got.Name)
	}
}

func TestInMemoryStoreDuplicateAdd(t *testing.T) {
	store := NewInMemoryRuleStore()
	if err := store.Add(percentDiscount("r1", "Promo", 1, 10)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Add(percentDiscount("r1", "Promo again", 1, 10)); err == nil {
		t.Error("Expected duplicate Add to fail")
	}
}

func TestInMemoryStoreGetMissing(t *testing.T) {
	store := NewInMemoryRuleStore()
	if _, err := store.Get("missing"); err == nil {
		t.Error("Expected Get of missing rule to fail")
	}
}

func TestInMemoryStoreUpdatePreservesCreatedAt(t *testing.T) {
	store := NewInMemoryRuleStore()
	rule := percentDiscount("r1", "Promo", 1, 10)
	if err := store.Add(rule); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	created := rule.CreatedAt

	time.Sleep(time.Millisecond)

	updated := percentDiscount("r1", "Bigger promo", 1, 20)
	if err := store.Update(updated); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.Get("r1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Bigger promo" {
		t.Errorf("Expected updated name, got %q", got.Name)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("Expected CreatedAt preserved, got %v vs %v", got.CreatedAt, created)
	}
	if !got.UpdatedAt.After(created) {
		t.Error("Expected UpdatedAt to advance on update")
	}
}

func TestInMemoryStoreUpdateMissing(t *testing.T) {
	store := NewInMemoryRuleStore()
	if err := store.Update(percentDiscount("ghost", "Ghost", 1, 10)); err == nil {
		t.Error("Expected Update of missing rule to fail")
	}
}

func TestInMemoryStoreDelete(t *testing.T) {
	store := NewInMemoryRuleStore()
	if err := store.Add(percentDiscount("r1", "Promo", 1, 10)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := store.Delete("r1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get("r1"); err == nil {
		t.Error("Expected Get after Delete to fail")
	}
	if err := store.Delete("r1"); err == nil {
		t.Error("Expected second Delete to fail")
	}
}

func TestInMemoryStoreListActiveOrdersAndFilters(t *testing.T) {
	store := NewInMemoryRuleStore()
	dormant := percentDiscount("r-dormant", "Dormant", 0, 10)
	dormant.Active = false

	for _, r := range []*Rule{
		percentDiscount("r-late", "Late", 20, 10),
		percentDiscount("r-early", "Early", 10, 10),
		dormant,
	} {
		if err := store.Add(r); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	active, err := store.ListActive()
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("Expected 2 active rules, got %d", len(active))
	}
	if active[0].ID != "r-early" || active[1].ID != "r-late" {
		t.Errorf("Expected priority order, got %q then %q", active[0].ID, active[1].ID)
	}

	all, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 rules from List, got %d", len(all))
	}
}

func TestInMemoryStoreSnapshotIsolation(t *testing.T) {
	store := NewInMemoryRuleStore()
	if err := store.Add(percentDiscount("r1", "Promo", 1, 10)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Mutating a returned rule must not leak into the store.
	got, err := store.Get("r1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got.Name = "Tampered"
	got.Actions[0].Value = dec("99")

	fresh, err := store.Get("r1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fresh.Name != "Promo" {
		t.Errorf("Expected store unaffected by caller mutation, got %q", fresh.Name)
	}
	if !fresh.Actions[0].Value.Equal(dec("10")) {
		t.Errorf("Expected action value unaffected, got %s", fresh.Actions[0].Value)
	}

	// A snapshot taken before an update keeps its original contents.
	snapshot, err := store.ListActive()
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if err := store.Update(percentDiscount("r1", "Replaced", 1, 50)); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if snapshot[0].Name != "Promo" {
		t.Errorf("Expected snapshot isolated from later update, got %q", snapshot[0].Name)
	}
}
