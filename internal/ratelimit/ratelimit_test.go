package ratelimit

import "testing"

func TestScriptBudget(t *testing.T) {
	t.Parallel()

	rl := New(2, 0, 0)

	if !rl.CanUseScript() {
		t.Fatal("fresh limiter should allow scripts")
	}
	if err := rl.UseScript(); err != nil {
		t.Fatalf("first use: %v", err)
	}
	if err := rl.UseScript(); err != nil {
		t.Fatalf("second use: %v", err)
	}
	if rl.CanUseScript() {
		t.Error("limit reached but CanUseScript is true")
	}
	if err := rl.UseScript(); err == nil {
		t.Error("expected error past the budget")
	}
}

func TestTotalBudgetCoversAllServices(t *testing.T) {
	t.Parallel()

	rl := New(0, 0, 2)
	if err := rl.UseScript(); err != nil {
		t.Fatalf("script: %v", err)
	}
	if err := rl.UseImage(); err != nil {
		t.Fatalf("image: %v", err)
	}
	if err := rl.UseScript(); err == nil {
		t.Error("total budget exhausted but script allowed")
	}
}

func TestZeroCapsAreUnlimited(t *testing.T) {
	t.Parallel()

	rl := New(0, 0, 0)
	for i := 0; i < 100; i++ {
		if err := rl.UseScript(); err != nil {
			t.Fatalf("use %d: %v", i, err)
		}
	}
}

func TestCacheHitRate(t *testing.T) {
	t.Parallel()

	rl := New(0, 0, 0)
	if rate := rl.CacheHitRate(); rate != 0 {
		t.Errorf("empty limiter hit rate = %f", rate)
	}

	_ = rl.UseScript() // miss
	rl.RecordCacheHit()

	if rate := rl.CacheHitRate(); rate != 0.5 {
		t.Errorf("hit rate = %f, want 0.5", rate)
	}
}
