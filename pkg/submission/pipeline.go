package submission

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/saladoop/shift-report-backend/pkg/blobstore"
	"github.com/saladoop/shift-report-backend/pkg/events"
	"github.com/saladoop/shift-report-backend/pkg/imaging"
	"github.com/saladoop/shift-report-backend/pkg/metrics"
	reportTypes "github.com/saladoop/shift-report-backend/pkg/types/report"
)

const (
	DEFAULT_UPLOAD_CONCURRENCY = 3
	DEFAULT_PUBLISH_TIMEOUT    = 5 * time.Second
	DEFAULT_TIMEZONE           = "Asia/Seoul"
)

type ReportStore interface {
	InsertReport(report reportTypes.Report) (reportTypes.Report, error)
}

type PhotoUploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type Reporter struct {
	UID   string
	Name  string
	Email string
}

type Photo struct {
	Slot int
	Data []byte
}

type Submission struct {
	Reporter Reporter
	Stage    reportTypes.ShiftStage
	Form     reportTypes.FormState
	Photos   []Photo
}

type Result struct {
	Report        reportTypes.Report
	DroppedPhotos []int
}

type Options struct {
	Location          *time.Location
	UploadConcurrency int
	PublishTimeout    time.Duration
}

// Pipeline turns a submitted form into a stored report and announces it.
type Pipeline struct {
	store     ReportStore
	uploader  PhotoUploader
	publisher events.Publisher

	location          *time.Location
	uploadConcurrency int
	publishTimeout    time.Duration
	now               func() time.Time
}

func NewPipeline(store ReportStore, uploader PhotoUploader, publisher events.Publisher, opts Options) *Pipeline {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if opts.Location == nil {
		opts.Location = LoadLocation(DEFAULT_TIMEZONE)
	}
	if opts.UploadConcurrency <= 0 {
		opts.UploadConcurrency = DEFAULT_UPLOAD_CONCURRENCY
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = DEFAULT_PUBLISH_TIMEOUT
	}
	return &Pipeline{
		store:             store,
		uploader:          uploader,
		publisher:         publisher,
		location:          opts.Location,
		uploadConcurrency: opts.UploadConcurrency,
		publishTimeout:    opts.PublishTimeout,
		now:               time.Now,
	}
}

// LoadLocation falls back to UTC when the zone database lacks name.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown timezone, using UTC", slog.String("timezone", name), slog.String("error", err.Error()))
		return time.UTC
	}
	return loc
}

type normalizedPhoto struct {
	slot int
	data []byte
}

// Submit validates, normalizes and uploads photos, then writes the report. Photos that cannot be
// decoded are dropped and their slots returned. Any upload failure aborts the submission, as does
// a cancelled ctx before the store write.
func (p *Pipeline) Submit(ctx context.Context, sub Submission) (Result, error) {
	form := sub.Form
	form.PhotoSlots = make([]int, 0, len(sub.Photos))
	for _, photo := range sub.Photos {
		form.PhotoSlots = append(form.PhotoSlots, photo.Slot)
	}

	draft, err := reportTypes.Validate(form, sub.Stage)
	if err != nil {
		metrics.Submissions.WithLabelValues(metrics.SUBMISSION_OUTCOME_VALIDATION_ERROR).Inc()
		return Result{}, err
	}
	stageConf, _ := reportTypes.GetStageConfig(draft.ShiftStage)

	normalized, dropped := p.normalizePhotos(sub.Reporter.UID, sub.Photos)

	now := p.now().In(p.location)
	photos, err := p.uploadPhotos(ctx, sub.Reporter.UID, now.UnixMilli(), normalized, stageConf)
	if err != nil {
		if ctx.Err() != nil {
			metrics.Submissions.WithLabelValues(metrics.SUBMISSION_OUTCOME_CANCELLED).Inc()
			return Result{}, ctx.Err()
		}
		metrics.Submissions.WithLabelValues(metrics.SUBMISSION_OUTCOME_UPLOAD_ERROR).Inc()
		return Result{}, err
	}

	if err := ctx.Err(); err != nil {
		slog.Info("submission cancelled before store write", slog.String("reporterUID", sub.Reporter.UID))
		metrics.Submissions.WithLabelValues(metrics.SUBMISSION_OUTCOME_CANCELLED).Inc()
		return Result{}, err
	}

	report, err := p.store.InsertReport(reportTypes.Report{
		ReporterUID:    sub.Reporter.UID,
		ReporterName:   sub.Reporter.Name,
		ReporterEmail:  sub.Reporter.Email,
		ShiftStage:     draft.ShiftStage,
		BusyLevel:      draft.BusyLevel,
		SummaryForBoss: draft.SummaryForBoss,
		Issues:         draft.Issues,
		Checklist:      draft.Checklist,
		Photos:         photos,
		Date:           reportTypes.LocaleDate(now),
		Timestamp:      reportTypes.LocaleTime(now),
	})
	if err != nil {
		slog.Error("failed to store report", slog.String("reporterUID", sub.Reporter.UID), slog.String("error", err.Error()))
		metrics.Submissions.WithLabelValues(metrics.SUBMISSION_OUTCOME_STORE_ERROR).Inc()
		return Result{}, err
	}
	metrics.Submissions.WithLabelValues(metrics.SUBMISSION_OUTCOME_STORED).Inc()
	slog.Info("report stored",
		slog.String("reportID", report.ID.Hex()),
		slog.String("stage", string(report.ShiftStage)),
		slog.Int("photos", len(report.Photos)),
		slog.Int("droppedPhotos", len(dropped)),
	)

	p.publish(ctx, report)

	return Result{Report: report, DroppedPhotos: dropped}, nil
}

func (p *Pipeline) normalizePhotos(uid string, photos []Photo) (normalized []normalizedPhoto, dropped []int) {
	sorted := append([]Photo(nil), photos...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Slot < sorted[j].Slot })

	dropped = []int{}
	for _, photo := range sorted {
		data, err := imaging.Normalize(photo.Data)
		if err != nil {
			slog.Warn("photo dropped", slog.String("reporterUID", uid), slog.Int("slot", photo.Slot), slog.String("error", err.Error()))
			metrics.PhotosDropped.Inc()
			dropped = append(dropped, photo.Slot)
			continue
		}
		normalized = append(normalized, normalizedPhoto{slot: photo.Slot, data: data})
	}
	return normalized, dropped
}

func (p *Pipeline) uploadPhotos(ctx context.Context, uid string, unixMillis int64, photos []normalizedPhoto, stageConf reportTypes.StageConfig) ([]reportTypes.PhotoEntry, error) {
	entries := make([]reportTypes.PhotoEntry, len(photos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.uploadConcurrency)
	for i, photo := range photos {
		g.Go(func() error {
			key := blobstore.PhotoKey(uid, unixMillis, photo.slot)
			url, err := p.uploader.Upload(gctx, key, photo.data, imaging.CONTENT_TYPE_JPEG)
			if err != nil {
				var uploadErr *blobstore.UploadError
				if !errors.As(err, &uploadErr) {
					err = &blobstore.UploadError{Key: key, Err: err}
				}
				return err
			}
			entries[i] = reportTypes.PhotoEntry{
				URL:   url,
				Label: stageConf.PhotoLabel(photo.slot),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// publish runs after the store write and must not depend on the request staying open.
func (p *Pipeline) publish(ctx context.Context, report reportTypes.Report) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.publishTimeout)
	defer cancel()

	err := p.publisher.PublishReportCreated(pubCtx, events.ReportCreated{
		ReportID:    report.ID.Hex(),
		ReporterUID: report.ReporterUID,
		CreatedAt:   report.CreatedAt,
	})
	if err != nil {
		slog.Error("failed to publish report created event", slog.String("reportID", report.ID.Hex()), slog.String("error", err.Error()))
	}
}
