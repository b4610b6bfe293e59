package report

import (
	"errors"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		form     FormState
		stage    ShiftStage
		wantCode ValidationErrorCode
	}{
		{
			name:  "valid minimal form",
			form:  FormState{SummaryForBoss: "all good"},
			stage: SHIFT_STAGE_OPEN,
		},
		{
			name:     "empty summary",
			form:     FormState{SummaryForBoss: ""},
			stage:    SHIFT_STAGE_OPEN,
			wantCode: VALIDATION_MISSING_SUMMARY,
		},
		{
			name:     "whitespace only summary",
			form:     FormState{SummaryForBoss: " \t\n "},
			stage:    SHIFT_STAGE_CLOSE,
			wantCode: VALIDATION_MISSING_SUMMARY,
		},
		{
			name:     "unknown stage",
			form:     FormState{SummaryForBoss: "ok"},
			stage:    "night",
			wantCode: VALIDATION_UNKNOWN_STAGE,
		},
		{
			name:     "checklist item of another stage",
			form:     FormState{SummaryForBoss: "ok", Checklist: map[string]bool{"gas_check": true}},
			stage:    SHIFT_STAGE_OPEN,
			wantCode: VALIDATION_UNKNOWN_CHECKLIST_ITEM,
		},
		{
			name:     "too many photos",
			form:     FormState{SummaryForBoss: "ok", PhotoSlots: []int{0, 1}},
			stage:    SHIFT_STAGE_OPEN,
			wantCode: VALIDATION_TOO_MANY_PHOTOS,
		},
		{
			name:     "slot out of range",
			form:     FormState{SummaryForBoss: "ok", PhotoSlots: []int{2}},
			stage:    SHIFT_STAGE_CLOSE,
			wantCode: VALIDATION_INVALID_PHOTO_SLOT,
		},
		{
			name:     "duplicate slot",
			form:     FormState{SummaryForBoss: "ok", PhotoSlots: []int{1, 1}},
			stage:    SHIFT_STAGE_MIDDLE,
			wantCode: VALIDATION_INVALID_PHOTO_SLOT,
		},
		{
			name:     "invalid busy level",
			form:     FormState{SummaryForBoss: "ok", BusyLevel: "chaos"},
			stage:    SHIFT_STAGE_MIDDLE,
			wantCode: VALIDATION_INVALID_BUSY_LEVEL,
		},
		{
			name:  "full close form",
			form:  FormState{SummaryForBoss: "ok", BusyLevel: BUSY_LEVEL_BUSY, Checklist: map[string]bool{"gas_check": true, "floor_check": false}, PhotoSlots: []int{1, 0}},
			stage: SHIFT_STAGE_CLOSE,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := Validate(tt.form, tt.stage)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if draft.ShiftStage != tt.stage {
					t.Errorf("unexpected stage: %s", draft.ShiftStage)
				}
				if draft.BusyLevel == "" {
					t.Errorf("busy level should default")
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if vErr.Code != tt.wantCode {
				t.Errorf("Validate() code = %s, want %s", vErr.Code, tt.wantCode)
			}
		})
	}
}

func TestValidateSortsPhotoSlots(t *testing.T) {
	draft, err := Validate(FormState{SummaryForBoss: "ok", PhotoSlots: []int{2, 0}}, SHIFT_STAGE_MIDDLE)
	if err != nil {
		t.Fatal(err)
	}
	if len(draft.PhotoSlots) != 2 || draft.PhotoSlots[0] != 0 || draft.PhotoSlots[1] != 2 {
		t.Errorf("unexpected slots: %v", draft.PhotoSlots)
	}
}

func TestLocaleFormatting(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	tests := []struct {
		name     string
		t        time.Time
		wantDate string
		wantTime string
	}{
		{"afternoon", time.Date(2026, 10, 17, 15, 4, 0, 0, loc), "2026. 10. 17.", "오후 03:04"},
		{"midnight", time.Date(2026, 1, 2, 0, 30, 0, 0, loc), "2026. 1. 2.", "오전 12:30"},
		{"noon", time.Date(2026, 1, 2, 12, 0, 0, 0, loc), "2026. 1. 2.", "오후 12:00"},
		{"morning", time.Date(2026, 3, 9, 9, 5, 0, 0, loc), "2026. 3. 9.", "오전 09:05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LocaleDate(tt.t); got != tt.wantDate {
				t.Errorf("LocaleDate() = %q, want %q", got, tt.wantDate)
			}
			if got := LocaleTime(tt.t); got != tt.wantTime {
				t.Errorf("LocaleTime() = %q, want %q", got, tt.wantTime)
			}
		})
	}
}
