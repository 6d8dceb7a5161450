package policy

import "testing"

func TestReason_String(t *testing.T) {
	t.Parallel()

	for r, want := range map[Reason]string{Capacity: "capacity", Cost: "cost", Age: "age", Reason(9): "unknown"} {
		if got := r.String(); got != want {
			t.Fatalf("Reason(%d).String() = %q, want %q", r, got, want)
		}
	}
}
