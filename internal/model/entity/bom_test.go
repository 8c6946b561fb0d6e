package entity

import "testing"

func TestBOMTransitionTarget(t *testing.T) {
	tests := []struct {
		action string
		from   string
		want   string
		ok     bool
	}{
		{BOMActionSubmit, BOMStatusDraft, BOMStatusPending, true},
		{BOMActionSubmit, BOMStatusPending, "", false},
		{BOMActionApprove, BOMStatusPending, BOMStatusApproved, true},
		{BOMActionApprove, BOMStatusDraft, "", false},
		{BOMActionApprove, BOMStatusActive, "", false},
		{BOMActionActivate, BOMStatusApproved, BOMStatusActive, true},
		{BOMActionActivate, BOMStatusDraft, "", false},
		{BOMActionDeactivate, BOMStatusApproved, BOMStatusInactive, true},
		{BOMActionDeactivate, BOMStatusActive, BOMStatusInactive, true},
		{BOMActionDeactivate, BOMStatusDraft, "", false},
		{BOMActionDeactivate, BOMStatusInactive, "", false},
		{"unknown", BOMStatusDraft, "", false},
	}

	for _, tt := range tests {
		got, ok := BOMTransitionTarget(tt.action, tt.from)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BOMTransitionTarget(%q, %q) = (%q, %v), want (%q, %v)",
				tt.action, tt.from, got, ok, tt.want, tt.ok)
		}
	}
}
