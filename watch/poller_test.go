package watch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackdwave/ai-chatbot/backend"
	"github.com/jackdwave/ai-chatbot/core"
	"github.com/jackdwave/ai-chatbot/fragments"
)

func testConfig() Config {
	return Config{
		SettleDelay:        0,
		PollInterval:       time.Millisecond,
		MaxEmptyAttempts:   8,
		StalenessThreshold: 5 * time.Minute,
	}
}

func quietLogger() *core.Logger {
	return core.NewLogger(func(string, string, map[string]interface{}) {})
}

// fakeBackend serves the event and download routes from canned responses.
type fakeBackend struct {
	t          *testing.T
	events     []string // successive responses for GET /event/{id}, last one repeats
	eventCalls int
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/event/", func(w http.ResponseWriter, r *http.Request) {
		idx := f.eventCalls
		if idx >= len(f.events) {
			idx = len(f.events) - 1
		}
		f.eventCalls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(f.events[idx]))
	})
	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			FilePath string `json:"file_path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			f.t.Errorf("download body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"download_url": "https://dl.example.com/" + body.FilePath,
		})
	})
	return mux
}

func newTestPoller(t *testing.T, fb *fakeBackend) (*Poller, func()) {
	t.Helper()
	srv := httptest.NewServer(fb.handler())
	p := NewPoller(backend.NewClient(srv.URL), testConfig(), quietLogger())
	return p, srv.Close
}

const finishedEvent = `{
	"jobs": [
		{"job_id": "step_1", "file_list": [{"label": "origin", "path": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}]},
		{"job_id": "step_2"}, {"job_id": "step_3"}, {"job_id": "step_4"}, {"job_id": "step_5"}
	],
	"results": {
		"step_1": {"files": [{"label": "trim_cut_result", "path": "p/trim.wav"}]},
		"step_2": {"files": [{"label": "vocals", "path": "p/vocals.wav"}]},
		"step_3": {"files": [{"label": "LadyGaga_key_2", "path": "p/vc.wav"}]},
		"step_4": {"files": [{"label": "merged_result", "path": "p/merged.wav"}]},
		"step_5": {"files": [
			{"label": "normalized_vc", "path": "p/norm_vc.flac"},
			{"label": "normalized_orig", "path": "p/norm_orig.flac"}
		]}
	},
	"states": [{}, {}, {}, {}, {}],
	"start_time": 1700000000000000000
}`

func TestAwaitConversionResolvesFinishedJob(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{t: t, events: []string{finishedEvent}}
	p, closeSrv := newTestPoller(t, fb)
	defer closeSrv()
	p.now = func() time.Time { return time.Unix(0, 1700000000000000000) }

	frag, job := p.AwaitConversion(context.Background(), "ev-1", func(core.Fragment) {})

	if job.Status != StatusSucceeded {
		t.Fatalf("status: got=%s want=%s", job.Status, StatusSucceeded)
	}
	result, ok := frag.(*fragments.ConversionResultFragment)
	if !ok {
		t.Fatalf("fragment type: got=%T", frag)
	}
	if result.ConversionID != "ev-1" {
		t.Fatalf("conversion id: got=%q", result.ConversionID)
	}
	if result.OriginURL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("origin url: got=%q", result.OriginURL)
	}
	if result.ModelLabel != "LadyGaga" {
		t.Fatalf("model label: got=%q", result.ModelLabel)
	}
	if result.SourceAudioURL != "https://dl.example.com/p/norm_orig.flac" {
		t.Fatalf("source url: got=%q", result.SourceAudioURL)
	}
	if result.ConvertedAudioURL != "https://dl.example.com/p/norm_vc.flac" {
		t.Fatalf("converted url: got=%q", result.ConvertedAudioURL)
	}
}

func TestAwaitConversionStepExceptionFails(t *testing.T) {
	t.Parallel()

	failed := strings.Replace(finishedEvent,
		`"states": [{}, {}, {}, {}, {}]`,
		`"states": [{}, {}, {"exception": {"message": "cuda out of memory"}}, {}, {}]`, 1)
	fb := &fakeBackend{t: t, events: []string{failed}}
	p, closeSrv := newTestPoller(t, fb)
	defer closeSrv()
	p.now = func() time.Time { return time.Unix(0, 1700000000000000000) }

	frag, job := p.AwaitConversion(context.Background(), "ev-2", func(core.Fragment) {})

	if job.Status != StatusFailed {
		t.Fatalf("status: got=%s want=%s", job.Status, StatusFailed)
	}
	if _, ok := frag.(*fragments.ErrorFragment); !ok {
		t.Fatalf("fragment type: got=%T", frag)
	}
}

func TestAwaitConversionStaleJobIsAmbiguous(t *testing.T) {
	t.Parallel()

	// Unfinished: one result for five declared jobs.
	unfinished := `{
		"jobs": [{"job_id": "step_1"}, {"job_id": "step_2"}, {"job_id": "step_3"}, {"job_id": "step_4"}, {"job_id": "step_5"}],
		"results": {"step_1": {"files": [{"label": "trim_cut_result", "path": "p/trim.wav"}]}},
		"states": [{}],
		"start_time": 1700000000000000000
	}`
	fb := &fakeBackend{t: t, events: []string{unfinished}}
	p, closeSrv := newTestPoller(t, fb)
	defer closeSrv()
	started := time.Unix(0, 1700000000000000000)
	p.now = func() time.Time { return started.Add(10 * time.Minute) }

	frag, job := p.AwaitConversion(context.Background(), "ev-3", func(core.Fragment) {})

	if job.Status != StatusAmbiguous {
		t.Fatalf("status: got=%s want=%s", job.Status, StatusAmbiguous)
	}
	if _, ok := frag.(*fragments.ErrorFragment); !ok {
		t.Fatalf("fragment type: got=%T", frag)
	}
}

func TestAwaitConversionMissingStartTimeIsAmbiguous(t *testing.T) {
	t.Parallel()

	// Incomplete event that never reports a start_time. Without one the job
	// counts as beyond the staleness threshold, so the first poll terminates
	// instead of looping until the caller gives up.
	unfinished := `{
		"jobs": [{"job_id": "step_1"}, {"job_id": "step_2"}, {"job_id": "step_3"}, {"job_id": "step_4"}, {"job_id": "step_5"}],
		"results": {"step_1": {"files": [{"label": "trim_cut_result", "path": "p/trim.wav"}]}},
		"states": [{}]
	}`
	fb := &fakeBackend{t: t, events: []string{unfinished}}
	p, closeSrv := newTestPoller(t, fb)
	defer closeSrv()

	frag, job := p.AwaitConversion(context.Background(), "ev-8", func(core.Fragment) {})

	if job.Status != StatusAmbiguous {
		t.Fatalf("status: got=%s want=%s", job.Status, StatusAmbiguous)
	}
	if _, ok := frag.(*fragments.ErrorFragment); !ok {
		t.Fatalf("fragment type: got=%T", frag)
	}
	if fb.eventCalls != 1 {
		t.Fatalf("event fetches: got=%d want=1", fb.eventCalls)
	}
}

func TestAwaitConversionWithinThresholdKeepsPolling(t *testing.T) {
	t.Parallel()

	unfinished := `{
		"jobs": [{"job_id": "step_1"}, {"job_id": "step_2"}, {"job_id": "step_3"}, {"job_id": "step_4"}, {"job_id": "step_5"}],
		"results": {"step_1": {"files": [{"label": "trim_cut_result", "path": "p/trim.wav"}]}},
		"states": [{}],
		"start_time": 1700000000000000000
	}`
	fb := &fakeBackend{t: t, events: []string{unfinished, unfinished, finishedEvent}}
	p, closeSrv := newTestPoller(t, fb)
	defer closeSrv()
	started := time.Unix(0, 1700000000000000000)
	p.now = func() time.Time { return started.Add(2 * time.Minute) }

	var yielded int
	frag, job := p.AwaitConversion(context.Background(), "ev-4", func(core.Fragment) { yielded++ })

	if job.Status != StatusSucceeded {
		t.Fatalf("status: got=%s want=%s", job.Status, StatusSucceeded)
	}
	if _, ok := frag.(*fragments.ConversionResultFragment); !ok {
		t.Fatalf("fragment type: got=%T", frag)
	}
	if yielded != 2 {
		t.Fatalf("processing yields: got=%d want=2", yielded)
	}
}

func TestAwaitConversionEmptyEventFails(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{t: t, events: []string{`{}`}}
	p, closeSrv := newTestPoller(t, fb)
	defer closeSrv()

	_, job := p.AwaitConversion(context.Background(), "ev-5", func(core.Fragment) {})
	if job.Status != StatusFailed {
		t.Fatalf("status: got=%s want=%s", job.Status, StatusFailed)
	}
}

func TestWaitRegisteredStopsOnceEventKnown(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{t: t, events: []string{`{}`, `{}`, finishedEvent}}
	p, closeSrv := newTestPoller(t, fb)
	defer closeSrv()

	var yielded int
	if err := p.WaitRegistered(context.Background(), "ev-6", func(core.Fragment) { yielded++ }); err != nil {
		t.Fatalf("WaitRegistered: %v", err)
	}
	if fb.eventCalls != 3 {
		t.Fatalf("event fetches: got=%d want=3", fb.eventCalls)
	}
	if yielded != 2 {
		t.Fatalf("processing yields: got=%d want=2", yielded)
	}
}

func TestWaitRegisteredGivesUpAfterAttemptBudget(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{t: t, events: []string{`{}`}}
	p, closeSrv := newTestPoller(t, fb)
	defer closeSrv()

	err := p.WaitRegistered(context.Background(), "ev-7", func(core.Fragment) {})
	if !errors.Is(err, ErrAmbiguousTimeout) {
		t.Fatalf("error: got=%v want=%v", err, ErrAmbiguousTimeout)
	}
	if fb.eventCalls != 8 {
		t.Fatalf("event fetches: got=%d want=8", fb.eventCalls)
	}
}

func TestAwaitCaptionerResolvesDownloads(t *testing.T) {
	t.Parallel()

	event := `{
		"jobs": [{"job_id": "captioner_job", "file_list": [{"label": "speech", "path": "https://youtu.be/dQw4w9WgXcQ"}]}],
		"results": {
			"captioner_job": {"files": [
				{"label": "zh-Hant", "path": "p/zh.srt"},
				{"label": "en", "path": "p/en.srt"}
			]}
		},
		"states": [{}],
		"start_time": 1700000000000000000
	}`
	fb := &fakeBackend{t: t, events: []string{event}}
	p, closeSrv := newTestPoller(t, fb)
	defer closeSrv()

	frag, job := p.AwaitCaptioner(context.Background(), "cap-1", func(core.Fragment) {})

	if job.Status != StatusSucceeded {
		t.Fatalf("status: got=%s want=%s", job.Status, StatusSucceeded)
	}
	result, ok := frag.(*fragments.CaptionerResultFragment)
	if !ok {
		t.Fatalf("fragment type: got=%T", frag)
	}
	if result.EmbedURL != "https://www.youtube.com/embed/dQw4w9WgXcQ" {
		t.Fatalf("embed url: got=%q", result.EmbedURL)
	}
	if len(result.Downloads) != 2 {
		t.Fatalf("downloads: got=%d want=2", len(result.Downloads))
	}
	if result.Downloads[0].Label != "zh-Hant" || result.Downloads[0].DownloadURL != "https://dl.example.com/p/zh.srt" {
		t.Fatalf("downloads[0]: got=%+v", result.Downloads[0])
	}
}

func TestAwaitCaptionerWaitsSettleDelayBeforeFirstPoll(t *testing.T) {
	t.Parallel()

	event := `{
		"jobs": [{"job_id": "captioner_job", "file_list": [{"label": "speech", "path": "https://youtu.be/dQw4w9WgXcQ"}]}],
		"results": {"captioner_job": {"files": [{"label": "en", "path": "p/en.srt"}]}},
		"states": [{}],
		"start_time": 1700000000000000000
	}`
	fb := &fakeBackend{t: t, events: []string{event}}
	srv := httptest.NewServer(fb.handler())
	defer srv.Close()

	cfg := testConfig()
	cfg.SettleDelay = 50 * time.Millisecond
	p := NewPoller(backend.NewClient(srv.URL), cfg, quietLogger())

	start := time.Now()
	_, job := p.AwaitCaptioner(context.Background(), "cap-3", func(core.Fragment) {})

	if job.Status != StatusSucceeded {
		t.Fatalf("status: got=%s want=%s", job.Status, StatusSucceeded)
	}
	if elapsed := time.Since(start); elapsed < cfg.SettleDelay {
		t.Fatalf("first poll fired before settle delay: elapsed=%v", elapsed)
	}
}

func TestAwaitCaptionerExhaustsToAmbiguous(t *testing.T) {
	t.Parallel()

	// Known event but the captioner_job result never appears.
	pending := `{
		"jobs": [{"job_id": "captioner_job", "file_list": [{"label": "speech", "path": "https://youtu.be/dQw4w9WgXcQ"}]}],
		"states": [{}],
		"start_time": 1700000000000000000
	}`
	fb := &fakeBackend{t: t, events: []string{pending}}
	p, closeSrv := newTestPoller(t, fb)
	defer closeSrv()

	frag, job := p.AwaitCaptioner(context.Background(), "cap-2", func(core.Fragment) {})

	if job.Status != StatusAmbiguous {
		t.Fatalf("status: got=%s want=%s", job.Status, StatusAmbiguous)
	}
	if _, ok := frag.(*fragments.ErrorFragment); !ok {
		t.Fatalf("fragment type: got=%T", frag)
	}
	if fb.eventCalls != 8 {
		t.Fatalf("event fetches: got=%d want=8", fb.eventCalls)
	}
}
