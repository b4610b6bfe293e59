package report

import (
	"fmt"
	"strings"
)

type ShiftStage string

const (
	SHIFT_STAGE_OPEN   ShiftStage = "open"
	SHIFT_STAGE_MIDDLE ShiftStage = "middle"
	SHIFT_STAGE_CLOSE  ShiftStage = "close"
)

var ALL_SHIFT_STAGES = []ShiftStage{
	SHIFT_STAGE_OPEN,
	SHIFT_STAGE_MIDDLE,
	SHIFT_STAGE_CLOSE,
}

type ChecklistItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type PhotoGuide struct {
	Label string `json:"label"`
	Desc  string `json:"desc"`
}

type StageConfig struct {
	Stage       ShiftStage      `json:"stage"`
	Label       string          `json:"label"`
	Checklist   []ChecklistItem `json:"checklist"`
	PhotoGuides []PhotoGuide    `json:"photo_guides"`
	MaxPhotos   int             `json:"max_photos"`
}

var stageConfigs = map[ShiftStage]StageConfig{
	SHIFT_STAGE_OPEN: {
		Stage: SHIFT_STAGE_OPEN,
		Label: "오픈",
		Checklist: []ChecklistItem{
			{ID: "delivery_on", Label: "배달 프로그램 ON"},
			{ID: "lights_on", Label: "조명, 음악 ON"},
			{ID: "ac_heater", Label: "에어컨 및 히터 확인"},
			{ID: "tea_water", Label: "따듯한 차 및 식수 준비"},
		},
		PhotoGuides: []PhotoGuide{
			{Label: "테이블 전체 + 식수 Self-zone", Desc: "매장 테이블 배치 상태와 식수대 셀프존을 한 컷에 촬영"},
		},
		MaxPhotos: 1,
	},
	SHIFT_STAGE_MIDDLE: {
		Stage: SHIFT_STAGE_MIDDLE,
		Label: "미들 타임",
		Checklist: []ChecklistItem{
			{ID: "table_check", Label: "테이블 정리 상태 확인"},
			{ID: "topping_check", Label: "토핑 준비 체크리스트 확인"},
			{ID: "filling_check", Label: "채우기 업무 리스트 확인"},
		},
		PhotoGuides: []PhotoGuide{
			{Label: "메인 유리문 냉장고", Desc: "유리문 냉장고 내부 재고 상태가 보이도록 촬영"},
			{Label: "토핑 냉장고 내부", Desc: "우측 문 2개를 열고 토핑 배치 상태 촬영"},
			{Label: "업무 리스트 체크 완료본", Desc: "체크 완료된 업무 리스트를 정면에서 촬영"},
		},
		MaxPhotos: 3,
	},
	SHIFT_STAGE_CLOSE: {
		Stage: SHIFT_STAGE_CLOSE,
		Label: "마감",
		Checklist: []ChecklistItem{
			{ID: "gas_check", Label: "가스 차단기 -초록불-"},
			{ID: "warmer_check", Label: "온장고 정리"},
			{ID: "fridge_check", Label: "토핑 냉장고 도구 정리"},
			{ID: "floor_check", Label: "바닥 청소"},
			{ID: "stove_check", Label: "화구 청소"},
			{ID: "dishwasher_check", Label: "식기세척기 마감"},
			{ID: "bleach_check", Label: "헹주 락스"},
			{ID: "lights_door", Label: "불 끄고 매장 문 잠그기"},
		},
		PhotoGuides: []PhotoGuide{
			{Label: "가스 차단기 잠금", Desc: "초록불 상태의 가스 차단기를 가까이서 촬영"},
			{Label: "토핑 냉장고 작업대 전체", Desc: "정리 완료된 작업대 전체가 보이도록 촬영"},
		},
		MaxPhotos: 2,
	},
}

func GetStageConfig(stage ShiftStage) (StageConfig, bool) {
	conf, ok := stageConfigs[stage]
	return conf, ok
}

// ParseShiftStage accepts either the stage key or its display label.
func ParseShiftStage(value string) (ShiftStage, bool) {
	value = strings.TrimSpace(value)
	for _, stage := range ALL_SHIFT_STAGES {
		if string(stage) == value || stageConfigs[stage].Label == value {
			return stage, true
		}
	}
	return "", false
}

func (s ShiftStage) IsValid() bool {
	_, ok := stageConfigs[s]
	return ok
}

// Label returns the display label, or the raw value for stages outside the table.
func (s ShiftStage) Label() string {
	if conf, ok := stageConfigs[s]; ok {
		return conf.Label
	}
	return string(s)
}

func (c StageConfig) HasChecklistItem(id string) bool {
	for _, item := range c.Checklist {
		if item.ID == id {
			return true
		}
	}
	return false
}

// PhotoLabel returns the guide caption for a slot or the positional fallback.
func (c StageConfig) PhotoLabel(slot int) string {
	if slot >= 0 && slot < len(c.PhotoGuides) && c.PhotoGuides[slot].Label != "" {
		return c.PhotoGuides[slot].Label
	}
	return fmt.Sprintf("사진 %d", slot+1)
}

type ChecklistDetail struct {
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// ChecklistDetails lists every item of the stage in table order; absent keys count as unchecked.
func ChecklistDetails(stage ShiftStage, checklist map[string]bool) []ChecklistDetail {
	conf, ok := stageConfigs[stage]
	if !ok {
		return nil
	}
	details := make([]ChecklistDetail, 0, len(conf.Checklist))
	for _, item := range conf.Checklist {
		details = append(details, ChecklistDetail{
			Label:   item.Label,
			Checked: checklist[item.ID],
		})
	}
	return details
}

// AllStageConfigs returns the stage table in enumeration order.
func AllStageConfigs() []StageConfig {
	configs := make([]StageConfig, 0, len(ALL_SHIFT_STAGES))
	for _, stage := range ALL_SHIFT_STAGES {
		configs = append(configs, stageConfigs[stage])
	}
	return configs
}
