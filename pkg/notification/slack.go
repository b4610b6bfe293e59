package notification

import (
	"fmt"
	"strings"
)

const (
	SLACK_DEFAULT_STAGE   = "시간 미정"
	SLACK_DEFAULT_NAME    = "알 수 없음"
	SLACK_DEFAULT_SUMMARY = "내용 없음"
	SLACK_DEFAULT_ISSUES  = "특이사항 없음"
	SLACK_DEFAULT_PHOTO   = "현장 사진"
)

type SlackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type SlackBlock struct {
	Type     string      `json:"type"`
	Text     *SlackText  `json:"text,omitempty"`
	Fields   []SlackText `json:"fields,omitempty"`
	Elements []SlackText `json:"elements,omitempty"`
	ImageURL string      `json:"image_url,omitempty"`
	AltText  string      `json:"alt_text,omitempty"`
	Title    *SlackText  `json:"title,omitempty"`
}

type SlackMessage struct {
	// fallback for notifications that cannot show blocks
	Text   string       `json:"text,omitempty"`
	Blocks []SlackBlock `json:"blocks"`
}

type SlackOptions struct {
	// CountOnlyPhotos replaces the image blocks by a count notice, for deployments where photo
	// URLs are not publicly fetchable.
	CountOnlyPhotos bool
}

var mrkdwnEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escapeMrkdwn neutralises control sequences such as <!channel>, <@U…> and <url|text> in user text.
func escapeMrkdwn(text string) string {
	return mrkdwnEscaper.Replace(text)
}

func plainText(text string) *SlackText {
	return &SlackText{Type: "plain_text", Text: text, Emoji: true}
}

func mrkdwn(text string) *SlackText {
	return &SlackText{Type: "mrkdwn", Text: text}
}

func section(text string) SlackBlock {
	return SlackBlock{Type: "section", Text: mrkdwn(text)}
}

// quote prefixes every line so multi-line summaries stay inside the quote
func quote(text string) string {
	return "> " + strings.ReplaceAll(text, "\n", "\n> ")
}

// RenderSlackMessage builds the block message for the report webhook.
func RenderSlackMessage(p ReportPayload, opts SlackOptions) SlackMessage {
	header := fmt.Sprintf("📝 Saladoop 일일 업무 보고 - %s", orDefault(p.StageLabel(), SLACK_DEFAULT_STAGE))

	blocks := []SlackBlock{
		{Type: "header", Text: plainText(header)},
		{
			Type: "section",
			Fields: []SlackText{
				*mrkdwn("*작성자:*\n" + escapeMrkdwn(orDefault(p.ReporterName, SLACK_DEFAULT_NAME))),
				*mrkdwn(fmt.Sprintf("*작성 시간:*\n%s %s", escapeMrkdwn(p.Date), escapeMrkdwn(p.Timestamp))),
			},
		},
		section("*📢 사장님 한 줄 요약:*\n" + quote(escapeMrkdwn(orDefault(p.SummaryForBoss, SLACK_DEFAULT_SUMMARY)))),
		section("*✅ 특이사항 및 업무 상세:*\n" + escapeMrkdwn(orDefault(p.Issues, SLACK_DEFAULT_ISSUES))),
	}

	if p.BusyLevel != "" {
		blocks = append(blocks, SlackBlock{
			Type:     "context",
			Elements: []SlackText{*mrkdwn("혼잡도: *" + escapeMrkdwn(p.BusyLevel) + "*")},
		})
	}

	if len(p.ChecklistDetails) > 0 {
		checked, total := p.CheckedCount()
		lines := make([]string, 0, len(p.ChecklistDetails)+1)
		lines = append(lines, fmt.Sprintf("*📋 체크리스트 (%d/%d)*", checked, total))
		for _, d := range p.ChecklistDetails {
			glyph := "⬜"
			if d.Checked {
				glyph = "✅"
			}
			lines = append(lines, glyph+" "+escapeMrkdwn(d.Label))
		}
		blocks = append(blocks, section(strings.Join(lines, "\n")))
	}

	if len(p.Photos) > 0 {
		if opts.CountOnlyPhotos {
			blocks = append(blocks, section(fmt.Sprintf("*📷 현장 사진 (%d장)*\n사진은 보고서 기록에서 확인할 수 있습니다.", len(p.Photos))))
		} else {
			blocks = append(blocks, section(fmt.Sprintf("*📷 현장 사진 (%d장)*", len(p.Photos))))
			for _, photo := range p.Photos {
				if photo.URL == "" {
					continue
				}
				label := orDefault(photo.Label, SLACK_DEFAULT_PHOTO)
				blocks = append(blocks, SlackBlock{
					Type:     "image",
					ImageURL: photo.URL,
					AltText:  label,
					Title:    plainText(label),
				})
			}
		}
	}

	return SlackMessage{
		Text:   header,
		Blocks: blocks,
	}
}
