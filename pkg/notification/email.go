package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"

	reportTypes "github.com/saladoop/shift-report-backend/pkg/types/report"
)

const (
	EMAIL_DEFAULT_SUBJECT_NAME = "신규"
	EMAIL_DEFAULT_NAME         = "알 수 없음"
	EMAIL_DEFAULT_STAGE        = "확인 불가"
	EMAIL_DEFAULT_SUMMARY      = "한 줄 요약이 없습니다."
	EMAIL_DEFAULT_ISSUES       = "상세 내용 없음"

	EMAIL_SENDER_DISPLAY_NAME = "Saladoop Report"
)

//go:embed templates/report-email.html
var templateFS embed.FS

var reportEmailTemplate = template.Must(template.ParseFS(templateFS, "templates/report-email.html"))

type RenderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

type emailTemplateData struct {
	Date         string
	Stage        string
	Summary      string
	ReporterName string
	Timestamp    string
	BusyLevel    string
	Issues       string
	Checklist    []reportTypes.ChecklistDetail
	CheckedCount int
	Photos       []reportTypes.PhotoEntry
}

// EmailSubject returns the subject line for the report email.
func EmailSubject(p ReportPayload) string {
	return strings.TrimSpace(fmt.Sprintf("[%s] %s 보고서 도착", orDefault(p.ReporterName, EMAIL_DEFAULT_SUBJECT_NAME), p.Date))
}

// RenderEmail renders the styled HTML document and its plain text alternative.
func RenderEmail(p ReportPayload) (RenderedEmail, error) {
	checked, _ := p.CheckedCount()
	photos := make([]reportTypes.PhotoEntry, 0, len(p.Photos))
	for i, photo := range p.Photos {
		if photo.URL == "" {
			continue
		}
		photos = append(photos, reportTypes.PhotoEntry{
			URL:   photo.URL,
			Label: orDefault(photo.Label, fmt.Sprintf("사진 %d", i+1)),
		})
	}

	data := emailTemplateData{
		Date:         p.Date,
		Stage:        orDefault(p.StageLabel(), EMAIL_DEFAULT_STAGE),
		Summary:      orDefault(p.SummaryForBoss, EMAIL_DEFAULT_SUMMARY),
		ReporterName: orDefault(p.ReporterName, EMAIL_DEFAULT_NAME),
		Timestamp:    p.Timestamp,
		BusyLevel:    p.BusyLevel,
		Issues:       orDefault(p.Issues, EMAIL_DEFAULT_ISSUES),
		Checklist:    p.ChecklistDetails,
		CheckedCount: checked,
		Photos:       photos,
	}

	var buf bytes.Buffer
	if err := reportEmailTemplate.Execute(&buf, data); err != nil {
		return RenderedEmail{}, fmt.Errorf("error during executing email template: %w", err)
	}
	html := buf.String()

	converter := md.NewConverter("", true, nil)
	text, err := converter.ConvertString(html)
	if err != nil {
		return RenderedEmail{}, fmt.Errorf("error converting email to text: %w", err)
	}

	return RenderedEmail{
		Subject: EmailSubject(p),
		HTML:    html,
		Text:    text,
	}, nil
}

// SenderAddress formats the From header for the configured sender mailbox.
func SenderAddress(mailbox string) string {
	return fmt.Sprintf("%q <%s>", EMAIL_SENDER_DISPLAY_NAME, mailbox)
}
