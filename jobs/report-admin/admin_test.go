package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	reportsDB "github.com/saladoop/shift-report-backend/pkg/db/reports"
	jwthandling "github.com/saladoop/shift-report-backend/pkg/jwt-handling"
	"github.com/saladoop/shift-report-backend/pkg/notification"
	reportTypes "github.com/saladoop/shift-report-backend/pkg/types/report"
)

func TestIssueToken(t *testing.T) {
	tests := []struct {
		name    string
		signKey string
		opts    tokenOptions
		wantErr string
	}{
		{name: "missing sign key", opts: tokenOptions{UID: "uid-1", ExpiresIn: "1d"}, wantErr: "sign key"},
		{name: "bad duration", signKey: "k", opts: tokenOptions{UID: "uid-1", ExpiresIn: "soon"}, wantErr: "expires-in"},
		{name: "unsafe uid", signKey: "k", opts: tokenOptions{UID: "../uid", ExpiresIn: "1h"}, wantErr: "not allowed"},
		{name: "valid", signKey: "k", opts: tokenOptions{UID: "uid-1", Email: "staff@example.com", Name: "Staff", ExpiresIn: "30d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := issueToken(&out, tt.signKey, tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			claims, valid, err := jwthandling.ValidateReporterToken(strings.TrimSpace(out.String()), tt.signKey)
			require.NoError(t, err)
			assert.True(t, valid)
			assert.Equal(t, "uid-1", claims.UID())
			assert.Equal(t, "staff@example.com", claims.Email)
		})
	}
}

func testReport() reportTypes.Report {
	return reportTypes.Report{
		ID:             primitive.NewObjectID(),
		ReporterUID:    "uid-1",
		ReporterName:   "구본록",
		ShiftStage:     reportTypes.SHIFT_STAGE_CLOSE,
		SummaryForBoss: "마감 완료",
		Checklist:      map[string]bool{"gas_check": true},
		Date:           "2026. 10. 17.",
		Timestamp:      "오후 10:04",
	}
}

func TestWriteRendered(t *testing.T) {
	rendered, err := notification.NewRelay(notification.RelayOptions{}).Render(notification.PayloadFromReport(testReport()))
	require.NoError(t, err)

	t.Run("slack", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, writeRendered(&out, rendered, RENDER_FORMAT_SLACK, "", ""))
		assert.True(t, json.Valid(out.Bytes()))
	})

	t.Run("html", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, writeRendered(&out, rendered, RENDER_FORMAT_HTML, "", ""))
		assert.Contains(t, out.String(), "마감 완료")
	})

	t.Run("eml", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, writeRendered(&out, rendered, RENDER_FORMAT_EML, "report@example.com", "boss@example.com"))
		assert.Contains(t, out.String(), "boss@example.com")
		assert.Contains(t, out.String(), "multipart/alternative")
	})

	t.Run("eml without addresses", func(t *testing.T) {
		assert.Error(t, writeRendered(&bytes.Buffer{}, rendered, RENDER_FORMAT_EML, "", ""))
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.Error(t, writeRendered(&bytes.Buffer{}, rendered, "pdf", "", ""))
	})
}

type fakeIterator struct {
	reports []reportTypes.Report
	scope   reportsDB.Scope
}

func (f *fakeIterator) FindAndExecuteOnReports(ctx context.Context, scope reportsDB.Scope, fn func(report reportTypes.Report, args ...interface{}) error, args ...interface{}) error {
	f.scope = scope
	for _, r := range f.reports {
		if err := fn(r, args...); err != nil {
			continue
		}
	}
	return nil
}

func TestExportReports(t *testing.T) {
	delivered := testReport()
	delivered.Notification = reportTypes.NotificationState{
		LastAttemptAt: 1700000000,
		CompletedAt:   1700000001,
		Slack:         &reportTypes.ChannelOutcome{Status: "sent", At: 1700000001},
	}
	it := &fakeIterator{reports: []reportTypes.Report{delivered, testReport()}}

	var out bytes.Buffer
	count, err := exportReports(context.Background(), &out, it, reportsDB.OwnerScope("uid-1"))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "uid-1", it.scope.ReporterUID)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var line ExportedReport
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &line))
	assert.Equal(t, "uid-1", line.ReporterUID)
	assert.Len(t, line.ChecklistDetails, 8)
	assert.True(t, line.ChecklistDetails[0].Checked)
	assert.Equal(t, 1, countChecked(line.ChecklistDetails))
	assert.Equal(t, int64(1700000001), line.Notification.CompletedAt)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &raw))
	assert.JSONEq(t, `{"last_attempt_at":1700000000,"completed_at":1700000001,"slack":{"status":"sent","at":1700000001}}`, string(raw["notification"]))
}

func countChecked(details []reportTypes.ChecklistDetail) int {
	n := 0
	for _, d := range details {
		if d.Checked {
			n++
		}
	}
	return n
}
