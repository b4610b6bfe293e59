package report

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BusyLevel string

const (
	BUSY_LEVEL_QUIET     BusyLevel = "한가함"
	BUSY_LEVEL_NORMAL    BusyLevel = "보통"
	BUSY_LEVEL_BUSY      BusyLevel = "바쁨"
	BUSY_LEVEL_VERY_BUSY BusyLevel = "매우 바쁨"

	DEFAULT_BUSY_LEVEL = BUSY_LEVEL_NORMAL
)

var ALL_BUSY_LEVELS = []BusyLevel{
	BUSY_LEVEL_QUIET,
	BUSY_LEVEL_NORMAL,
	BUSY_LEVEL_BUSY,
	BUSY_LEVEL_VERY_BUSY,
}

func (b BusyLevel) IsValid() bool {
	for _, l := range ALL_BUSY_LEVELS {
		if l == b {
			return true
		}
	}
	return false
}

// Report is the durable record of one shift submission.
type Report struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReporterUID    string             `bson:"reporterUid" json:"reporter_uid"`
	ReporterName   string             `bson:"reporterName" json:"reporter_name"`
	ReporterEmail  string             `bson:"reporterEmail" json:"reporter_email,omitempty"`
	ShiftStage     ShiftStage         `bson:"shiftStage" json:"shift_stage"`
	BusyLevel      BusyLevel          `bson:"busyLevel" json:"busy_level"`
	SummaryForBoss string             `bson:"summaryForBoss" json:"summary_for_boss"`
	Issues         string             `bson:"issues" json:"issues"`
	Checklist      map[string]bool    `bson:"checklist" json:"checklist"`
	Photos         []PhotoEntry       `bson:"photos" json:"photos"`
	HasPhoto       bool               `bson:"hasPhoto" json:"has_photo"`
	Date           string             `bson:"date" json:"date"`
	Timestamp      string             `bson:"timestamp" json:"timestamp"`
	CreatedAt      time.Time          `bson:"createdAt" json:"created_at"`

	// relay bookkeeping, written after insert and never shown to reporters
	Notification NotificationState `bson:"notification" json:"-"`
}

type PhotoEntry struct {
	URL   string `bson:"url" json:"url"`
	Label string `bson:"label" json:"label"`
}

const (
	CHANNEL_STATUS_SENT    = "sent"
	CHANNEL_STATUS_FAILED  = "failed"
	CHANNEL_STATUS_SKIPPED = "skipped"
)

type ChannelOutcome struct {
	Status string `bson:"status" json:"status"`
	Error  string `bson:"error,omitempty" json:"error,omitempty"`
	At     int64  `bson:"at" json:"at"`
}

type NotificationState struct {
	LastAttemptAt int64           `bson:"lastAttemptAt" json:"last_attempt_at"`
	CompletedAt   int64           `bson:"completedAt" json:"completed_at"`
	Slack         *ChannelOutcome `bson:"slack,omitempty" json:"slack,omitempty"`
	Email         *ChannelOutcome `bson:"email,omitempty" json:"email,omitempty"`
}

// CheckedCount returns how many checklist entries are true.
func (r Report) CheckedCount() int {
	return CountChecked(r.Checklist)
}

func CountChecked(checklist map[string]bool) int {
	count := 0
	for _, v := range checklist {
		if v {
			count++
		}
	}
	return count
}
