package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jackdwave/ai-chatbot/backend"
)

func TestNewConversionWorkflowShape(t *testing.T) {
	t.Parallel()

	wf := NewConversionWorkflow(ConversionRequest{
		SourceURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		StartTime:  65,
		EndTime:    125,
		Pitch:      2,
		VoiceModel: "LadyGaga",
	})

	if len(wf.Jobs) != 5 {
		t.Fatalf("job count: got=%d want=5", len(wf.Jobs))
	}

	wantIDs := []backend.StepID{backend.Step1, backend.Step2, backend.Step3, backend.Step4, backend.Step5}
	wantWorkers := []string{"transformer", "svs", "vc", "transformer", "transformer"}
	for i, job := range wf.Jobs {
		if job.JobID != wantIDs[i] {
			t.Fatalf("jobs[%d].JobID: got=%s want=%s", i, job.JobID, wantIDs[i])
		}
		if job.WorkerName != wantWorkers[i] {
			t.Fatalf("jobs[%d].WorkerName: got=%s want=%s", i, job.WorkerName, wantWorkers[i])
		}
	}

	step1 := wf.Jobs[0]
	if len(step1.FileList) != 1 || step1.FileList[0].Label != "origin" {
		t.Fatalf("step_1 file list: got=%+v", step1.FileList)
	}
	trim, ok := step1.Params.(trimCutParams)
	if !ok {
		t.Fatalf("step_1 params type: got=%T", step1.Params)
	}
	if trim.StartIndex != "00:01:05" || trim.EndIndex != "00:02:05" {
		t.Fatalf("trim bounds: got=%s..%s want=00:01:05..00:02:05", trim.StartIndex, trim.EndIndex)
	}

	vc, ok := wf.Jobs[2].Params.(voiceConversionParams)
	if !ok {
		t.Fatalf("step_3 params type: got=%T", wf.Jobs[2].Params)
	}
	if len(vc.Speakers) != 1 || vc.Speakers[0] != "LadyGaga" {
		t.Fatalf("speakers: got=%v", vc.Speakers)
	}
	if got := vc.SpeakersPitch["LadyGaga"]; len(got) != 1 || got[0] != 2 {
		t.Fatalf("speakers pitch: got=%v", vc.SpeakersPitch)
	}

	norm, ok := wf.Jobs[4].Params.(normalizeParams)
	if !ok {
		t.Fatalf("step_5 params type: got=%T", wf.Jobs[4].Params)
	}
	if norm.TargetLUFS != -14 || norm.TruePeak != -2 {
		t.Fatalf("normalize targets: got=%d LUFS / %d dBTP", norm.TargetLUFS, norm.TruePeak)
	}
}

func TestNewConversionWorkflowVoiceConversionResultKey(t *testing.T) {
	t.Parallel()

	wf := NewConversionWorkflow(ConversionRequest{
		SourceURL:  "https://youtu.be/dQw4w9WgXcQ",
		EndTime:    30,
		Pitch:      -3,
		VoiceModel: "Yoasobi",
	})

	want := "step_3__Yoasobi_key_-3"
	if got := wf.Jobs[3].RelationResultFiles["vc_result"]; got != want {
		t.Fatalf("step_4 vc_result relation: got=%q want=%q", got, want)
	}
}

func TestNewConversionWorkflowDependenciesReferenceEarlierSteps(t *testing.T) {
	t.Parallel()

	wf := NewConversionWorkflow(ConversionRequest{
		SourceURL:  "https://youtu.be/dQw4w9WgXcQ",
		EndTime:    10,
		VoiceModel: "gura",
	})

	for i, job := range wf.Jobs {
		for name, ref := range job.RelationResultFiles {
			var ok bool
			for j := 0; j < i; j++ {
				prefix := fmt.Sprintf("%s__", wf.Jobs[j].JobID)
				if strings.HasPrefix(ref, prefix) {
					ok = true
					break
				}
			}
			if !ok {
				t.Fatalf("jobs[%d] dependency %q -> %q does not reference an earlier step", i, name, ref)
			}
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   int
		want string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{61, "00:01:01"},
		{3661, "01:01:01"},
		{-5, "00:00:00"},
	}
	for _, tc := range cases {
		if got := FormatSeconds(tc.in); got != tc.want {
			t.Fatalf("FormatSeconds(%d): got=%q want=%q", tc.in, got, tc.want)
		}
	}
}
