package report

import (
	"fmt"
	"sort"
	"strings"
)

type ValidationErrorCode string

const (
	VALIDATION_MISSING_SUMMARY        ValidationErrorCode = "MissingSummary"
	VALIDATION_UNKNOWN_STAGE          ValidationErrorCode = "UnknownStage"
	VALIDATION_UNKNOWN_CHECKLIST_ITEM ValidationErrorCode = "UnknownChecklistItem"
	VALIDATION_TOO_MANY_PHOTOS        ValidationErrorCode = "TooManyPhotos"
	VALIDATION_INVALID_PHOTO_SLOT     ValidationErrorCode = "InvalidPhotoSlot"
	VALIDATION_INVALID_BUSY_LEVEL     ValidationErrorCode = "InvalidBusyLevel"
)

type ValidationError struct {
	Code   ValidationErrorCode
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "validation failed: " + string(e.Code)
	}
	return fmt.Sprintf("validation failed: %s (%s)", e.Code, e.Detail)
}

// FormState is the in-progress form as submitted by the client.
type FormState struct {
	BusyLevel      BusyLevel       `json:"busy_level"`
	SummaryForBoss string          `json:"summary_for_boss"`
	Issues         string          `json:"issues"`
	Checklist      map[string]bool `json:"checklist"`

	// slots that carry a photo, filled from the uploaded files
	PhotoSlots []int `json:"-"`
}

// Draft is a validated report without reporter identity, photo URLs or timestamps.
type Draft struct {
	ShiftStage     ShiftStage
	BusyLevel      BusyLevel
	SummaryForBoss string
	Issues         string
	Checklist      map[string]bool
	PhotoSlots     []int
}

// Validate checks the form against the stage table. Only the summary is required.
func Validate(form FormState, stage ShiftStage) (Draft, error) {
	conf, ok := GetStageConfig(stage)
	if !ok {
		return Draft{}, &ValidationError{Code: VALIDATION_UNKNOWN_STAGE, Detail: string(stage)}
	}

	if strings.TrimSpace(form.SummaryForBoss) == "" {
		return Draft{}, &ValidationError{Code: VALIDATION_MISSING_SUMMARY}
	}

	busyLevel := form.BusyLevel
	if busyLevel == "" {
		busyLevel = DEFAULT_BUSY_LEVEL
	} else if !busyLevel.IsValid() {
		return Draft{}, &ValidationError{Code: VALIDATION_INVALID_BUSY_LEVEL, Detail: string(busyLevel)}
	}

	checklist := make(map[string]bool, len(form.Checklist))
	for key, checked := range form.Checklist {
		if !conf.HasChecklistItem(key) {
			return Draft{}, &ValidationError{Code: VALIDATION_UNKNOWN_CHECKLIST_ITEM, Detail: key}
		}
		checklist[key] = checked
	}

	if len(form.PhotoSlots) > conf.MaxPhotos {
		return Draft{}, &ValidationError{
			Code:   VALIDATION_TOO_MANY_PHOTOS,
			Detail: fmt.Sprintf("%d photos, max %d", len(form.PhotoSlots), conf.MaxPhotos),
		}
	}
	slots := append([]int(nil), form.PhotoSlots...)
	sort.Ints(slots)
	for i, slot := range slots {
		if slot < 0 || slot >= conf.MaxPhotos {
			return Draft{}, &ValidationError{Code: VALIDATION_INVALID_PHOTO_SLOT, Detail: fmt.Sprintf("slot %d", slot)}
		}
		if i > 0 && slots[i-1] == slot {
			return Draft{}, &ValidationError{Code: VALIDATION_INVALID_PHOTO_SLOT, Detail: fmt.Sprintf("duplicate slot %d", slot)}
		}
	}

	return Draft{
		ShiftStage:     stage,
		BusyLevel:      busyLevel,
		SummaryForBoss: form.SummaryForBoss,
		Issues:         form.Issues,
		Checklist:      checklist,
		PhotoSlots:     slots,
	}, nil
}
