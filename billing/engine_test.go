package billing

import (
	"io"
	"log/slog"
	"testing"
)

func newTestEngine(t *testing.T) (*Engine, *InMemoryRuleStore) {
	t.Helper()
	store := NewInMemoryRuleStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(store, logger), store
}

func TestEngineAddRuleValidates(t *testing.T) {
	engine, _ := newTestEngine(t)

	bad := percentDiscount("r1", "", 1, 10)
	if err := engine.AddRule(bad); err == nil {
		t.Error("Expected invalid rule to be rejected")
	}

	good := percentDiscount("r1", "Promo", 1, 10)
	if err := engine.AddRule(good); err != nil {
		t.Errorf("Expected valid rule to be accepted, got %v", err)
	}
}

func TestEngineCalculateSeesNewRules(t *testing.T) {
	engine, _ := newTestEngine(t)
	charges := []Charge{{
		ServiceCode: "KONS-01",
		ServiceName: "Konsultasi Dokter Umum",
		Quantity:    1,
		UnitPrice:   rp(100000),
	}}

	// First calculation warms the snapshot cache with zero rules.
	result, err := engine.CalculateInvoice(charges, BillingContext{})
	if err != nil {
		t.Fatalf("CalculateInvoice failed: %v", err)
	}
	if !result.PatientResponsibility.Equal(rp(100000)) {
		t.Errorf("Expected 100000 with no rules, got %s", result.PatientResponsibility)
	}

	// Adding a rule through the engine invalidates the snapshot.
	if err := engine.AddRule(percentDiscount("r1", "Promo", 1, 10)); err != nil {
		t.Fatalf("AddRule failed: %v", err)
	}

	result, err = engine.CalculateInvoice(charges, BillingContext{})
	if err != nil {
		t.Fatalf("CalculateInvoice failed: %v", err)
	}
	if !result.PatientResponsibility.Equal(rp(90000)) {
		t.Errorf("Expected new rule to apply, got %s", result.PatientResponsibility)
	}
}

func TestEngineUpdateAndDeleteInvalidateSnapshot(t *testing.T) {
	engine, _ := newTestEngine(t)
	charges := []Charge{{
		ServiceCode: "KONS-01",
		ServiceName: "Konsultasi Dokter Umum",
		Quantity:    1,
		UnitPrice:   rp(100000),
	}}

	if err := engine.AddRule(percentDiscount("r1", "Promo", 1, 10)); err != nil {
		t.Fatalf("AddRule failed: %v", err)
	}
	if _, err := engine.CalculateInvoice(charges, BillingContext{}); err != nil {
		t.Fatalf("CalculateInvoice failed: %v", err)
	}

	if err := engine.UpdateRule(percentDiscount("r1", "Bigger promo", 1, 20)); err != nil {
		t.Fatalf("UpdateRule failed: %v", err)
	}
	result, err := engine.CalculateInvoice(charges, BillingContext{})
	if err != nil {
		t.Fatalf("CalculateInvoice failed: %v", err)
	}
	if !result.PatientResponsibility.Equal(rp(80000)) {
		t.Errorf("Expected updated rule to apply, got %s", result.PatientResponsibility)
	}

	if err := engine.DeleteRule("r1"); err != nil {
		t.Fatalf("DeleteRule failed: %v", err)
	}
	result, err = engine.CalculateInvoice(charges, BillingContext{})
	if err != nil {
		t.Fatalf("CalculateInvoice failed: %v", err)
	}
	if !result.PatientResponsibility.Equal(rp(100000)) {
		t.Errorf("Expected deleted rule to stop applying, got %s", result.PatientResponsibility)
	}
}

func TestEngineSnapshotUsesCacheUntilInvalidated(t *testing.T) {
	engine, store := newTestEngine(t)

	if err := engine.AddRule(percentDiscount("r1", "Promo", 1, 10)); err != nil {
		t.Fatalf("AddRule failed: %v", err)
	}
	if _, err := engine.Snapshot(); err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	// A write that bypasses the engine is invisible until invalidation.
	if err := store.Add(percentDiscount("r2", "Backdoor", 2, 5)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	snapshot, err := engine.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snapshot) != 1 {
		t.Errorf("Expected cached snapshot of 1 rule, got %d", len(snapshot))
	}

	if err := engine.DeleteRule("r1"); err != nil {
		t.Fatalf("DeleteRule failed: %v", err)
	}
	snapshot, err = engine.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0].ID != "r2" {
		t.Errorf("Expected refreshed snapshot after invalidation, got %v", snapshot)
	}
}

func TestEngineSimulateRules(t *testing.T) {
	engine, _ := newTestEngine(t)

	senior := percentDiscount("r1", "Senior discount", 1, 10)
	senior.Conditions = []Condition{
		{Field: FieldAge, Operator: OpGreaterThan, Value: IntValue(60)},
	}
	if err := engine.AddRule(senior); err != nil {
		t.Fatalf("AddRule failed: %v", err)
	}

	outcomes, err := engine.SimulateRules(BillingContext{Age: 70}, rp(100000))
	if err != nil {
		t.Fatalf("SimulateRules failed: %v", err)
	}
	if len(outcomes) != 1 || !outcomes[0].Matched {
		t.Fatalf("Expected one matched outcome, got %+v", outcomes)
	}
	if !outcomes[0].ResultAmount.Equal(rp(90000)) {
		t.Errorf("Expected result 90000, got %s", outcomes[0].ResultAmount)
	}
}
