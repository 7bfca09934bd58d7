package watch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackdwave/ai-chatbot/backend"
	"github.com/jackdwave/ai-chatbot/core"
	"github.com/jackdwave/ai-chatbot/fragments"
	"github.com/jackdwave/ai-chatbot/pipeline"
	"github.com/jackdwave/ai-chatbot/youtube"
)

// Status is the lifecycle of a watched job. Ambiguous is terminal like
// Failed, but kept distinct so callers can tell "confirmed broken" from
// "could not confirm within budget" without a data-model change — the
// rendered fragment is currently identical for both.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusAmbiguous  Status = "ambiguous"
)

type Kind string

const (
	KindConversion Kind = "conversion"
	KindCaptioner  Kind = "captioner"
)

// Job is one backend event under observation. Status transitions are owned
// exclusively by the Poller.
type Job struct {
	EventID string
	Kind    Kind
	Status  Status
}

// ErrAmbiguousTimeout marks a job whose completion could not be confirmed
// within the time/attempt budget.
var ErrAmbiguousTimeout = errors.New("watch: job status unknown after attempt budget")

// Config bounds the polling loops. All fields are injectable so tests can run
// with microsecond timings.
type Config struct {
	SettleDelay        time.Duration // delay before the first poll
	PollInterval       time.Duration // fixed delay between polls
	MaxEmptyAttempts   int           // empty {} responses tolerated before ambiguous timeout
	StalenessThreshold time.Duration // wall-clock budget measured from the job's start_time
}

func DefaultConfig() Config {
	return Config{
		SettleDelay:        1 * time.Second,
		PollInterval:       5 * time.Second,
		MaxEmptyAttempts:   8,
		StalenessThreshold: 5 * time.Minute,
	}
}

// Poller drives a submitted job to one of its terminal outcomes, yielding a
// "still processing" fragment after every unsuccessful poll so the consumer
// is never silent for more than one poll interval. There is no cancel
// primitive: a caller abandons a watch by cancelling ctx or dropping the
// streamable consumer.
type Poller struct {
	backend *backend.Client
	cfg     Config
	logger  *core.Logger
	now     func() time.Time
}

func NewPoller(client *backend.Client, cfg Config, logger *core.Logger) *Poller {
	if cfg.MaxEmptyAttempts <= 0 {
		cfg.MaxEmptyAttempts = DefaultConfig().MaxEmptyAttempts
	}
	return &Poller{
		backend: client,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// WaitRegistered blocks until the backend knows the job, bounded by
// MaxEmptyAttempts. A fetch error is terminal for the job: a single transient
// failure is deliberately not retried (matches the upstream contract; see
// DESIGN.md before softening this).
func (p *Poller) WaitRegistered(ctx context.Context, eventID string, yield func(core.Fragment)) error {
	sleep(ctx, p.cfg.SettleDelay)

	for attempts := 0; attempts < p.cfg.MaxEmptyAttempts; attempts++ {
		event, err := p.backend.FetchEvent(ctx, eventID)
		if err != nil {
			return fmt.Errorf("watch: fetch event %s: %w", eventID, err)
		}
		if !event.Empty() {
			return nil
		}

		sleep(ctx, p.cfg.PollInterval)
		yield(&fragments.ProcessingFragment{
			Message:    "It may take more than one minute to complete",
			ShowAvatar: true,
		})

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return ErrAmbiguousTimeout
}

// AwaitConversion polls a voice-conversion job to a terminal outcome and
// returns the final fragment together with the job's terminal state. On
// success the source and converted audio references are resolved through the
// documented fallback chain, then both download URLs are fetched
// concurrently — the one fan-out/fan-in point of the engine.
func (p *Poller) AwaitConversion(ctx context.Context, conversionID string, yield func(core.Fragment)) (core.Fragment, Job) {
	job := Job{EventID: conversionID, Kind: KindConversion, Status: StatusProcessing}
	log := p.logger.With(map[string]any{"event_id": conversionID, "kind": "conversion"})

	for {
		event, err := p.backend.FetchEvent(ctx, conversionID)
		if err != nil {
			log.With(map[string]any{"error": err}).Error("event fetch failed")
			return p.fail(&job, StatusFailed, conversionID)
		}
		if event.Empty() {
			return p.fail(&job, StatusFailed, conversionID)
		}

		if event.Failed() {
			log.Warn("job reported a step exception")
			return p.fail(&job, StatusFailed, conversionID)
		}
		if !event.Finished() && p.stale(event.StartTime) {
			log.Warn("job exceeded staleness threshold, giving up")
			return p.fail(&job, StatusAmbiguous, conversionID)
		}

		if event.Finished() {
			fragment, ok := p.resolveConversion(ctx, conversionID, event, log)
			if !ok {
				return p.fail(&job, StatusFailed, conversionID)
			}
			job.Status = StatusSucceeded
			return fragment, job
		}

		sleep(ctx, p.cfg.PollInterval)
		yield(&fragments.ProcessingFragment{
			Message:    "conversion is processing, please try later",
			ShowAvatar: true,
		})

		if ctx.Err() != nil {
			return p.fail(&job, StatusAmbiguous, conversionID)
		}
	}
}

func (p *Poller) resolveConversion(ctx context.Context, conversionID string, event backend.EventResponse, log *core.Logger) (core.Fragment, bool) {
	outputs, err := pipeline.ResolveConversionOutputs(event.Results)
	if err != nil {
		log.With(map[string]any{"error": err}).Error("could not resolve conversion outputs")
		return nil, false
	}

	originURL := ""
	if len(event.Jobs) > 0 && len(event.Jobs[0].FileList) > 0 {
		originURL = event.Jobs[0].FileList[0].Path
	}

	// Source and converted audio resolve independently; fetch both download
	// URLs concurrently and wait for the pair.
	var (
		wg                 sync.WaitGroup
		sourceURL, convURL string
		sourceErr, convErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		sourceURL, sourceErr = p.backend.DownloadURL(ctx, outputs.SourceAudioPath)
	}()
	go func() {
		defer wg.Done()
		convURL, convErr = p.backend.DownloadURL(ctx, outputs.ConvertedAudioPath)
	}()
	wg.Wait()

	if sourceErr != nil || convErr != nil {
		log.With(map[string]any{"source_err": sourceErr, "converted_err": convErr}).Error("audio download resolution failed")
		return nil, false
	}

	return &fragments.ConversionResultFragment{
		ConversionID:      conversionID,
		OriginURL:         originURL,
		ModelLabel:        outputs.ModelLabel,
		SourceAudioURL:    sourceURL,
		ConvertedAudioURL: convURL,
	}, true
}

// AwaitCaptioner polls a captioner job. Completion is signalled by the
// captioner_job result key; its output files are each resolved to a download
// URL. Exhausting the attempt budget without the key is an ambiguous timeout.
func (p *Poller) AwaitCaptioner(ctx context.Context, eventID string, yield func(core.Fragment)) (core.Fragment, Job) {
	job := Job{EventID: eventID, Kind: KindCaptioner, Status: StatusProcessing}
	log := p.logger.With(map[string]any{"event_id": eventID, "kind": "captioner"})

	sleep(ctx, p.cfg.SettleDelay)

	for attempts := 0; attempts < p.cfg.MaxEmptyAttempts; attempts++ {
		event, err := p.backend.FetchEvent(ctx, eventID)
		if err != nil {
			log.With(map[string]any{"error": err}).Error("event fetch failed")
			return p.fail(&job, StatusFailed, eventID)
		}

		if result, ok := event.Results[backend.CaptionerJob]; ok {
			downloads := make([]fragments.CaptionDownload, 0, len(result.Files))
			for _, file := range result.Files {
				url, err := p.backend.DownloadURL(ctx, file.Path)
				if err != nil {
					log.With(map[string]any{"error": err, "label": file.Label}).Error("caption download resolution failed")
					return p.fail(&job, StatusFailed, eventID)
				}
				downloads = append(downloads, fragments.CaptionDownload{Label: file.Label, DownloadURL: url})
			}

			sourceURL := ""
			if len(event.Jobs) > 0 && len(event.Jobs[0].FileList) > 0 {
				sourceURL = event.Jobs[0].FileList[0].Path
			}

			job.Status = StatusSucceeded
			return &fragments.CaptionerResultFragment{
				EventID:   eventID,
				EmbedURL:  youtube.EmbedLink(sourceURL),
				Downloads: downloads,
			}, job
		}

		sleep(ctx, p.cfg.PollInterval)
		yield(&fragments.ProcessingFragment{
			Message:    "It may take more than one minute to complete",
			ShowAvatar: true,
		})

		if ctx.Err() != nil {
			break
		}
	}
	return p.fail(&job, StatusAmbiguous, eventID)
}

func (p *Poller) fail(job *Job, status Status, eventID string) (core.Fragment, Job) {
	job.Status = status
	return &fragments.ErrorFragment{
		Message: fmt.Sprintf("Failed to fetch conversion event with id: %s", eventID),
	}, *job
}

// stale compares the job's recorded start (nanoseconds) against now. Jobs
// older than the threshold and still incomplete are presumed stuck. A
// missing start_time counts as epoch zero, which always exceeds the
// threshold: an incomplete event with no start timestamp terminates here
// rather than polling without bound.
func (p *Poller) stale(startTimeNanos int64) bool {
	started := time.Unix(0, startTimeNanos)
	diff := p.now().Sub(started)
	if diff < 0 {
		diff = -diff
	}
	return diff > p.cfg.StalenessThreshold
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
