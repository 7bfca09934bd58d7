package backend

// StepID names one pipeline step inside a job. The voice-conversion workflow
// uses step_1..step_5; the captioner worker reports its single step as
// captioner_job.
type StepID string

const (
	Step1        StepID = "step_1"
	Step2        StepID = "step_2"
	Step3        StepID = "step_3"
	Step4        StepID = "step_4"
	Step5        StepID = "step_5"
	CaptionerJob StepID = "captioner_job"
)

// File is a labeled backend file reference.
type File struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// JobSpec is one step of a workflow submission. RelationResultFiles declares
// which named outputs of earlier steps this step consumes; the backend treats
// it as a static dependency graph, so the exact key shapes matter.
type JobSpec struct {
	RelationResultFiles map[string]string `json:"relation_result_files"`
	FileList            []File            `json:"file_list"`
	JobID               StepID            `json:"job_id"`
	Params              any               `json:"params"`
	WorkerName          string            `json:"worker_name"`
}

// Workflow is the request body for POST /workflow.
type Workflow struct {
	Jobs []JobSpec `json:"jobs"`
}

// CaptionerParams configures the captioner worker.
type CaptionerParams struct {
	AutoDetectLanguages            []string `json:"auto_detect_languages"`
	File                           string   `json:"file"`
	PhrasesList                    string   `json:"phrases_list"`
	SpeechTranslateTargetLanguages []string `json:"speech_translate_target_languages"`
}

// CaptionerWorker is the request body for POST /worker/captioner.
type CaptionerWorker struct {
	FileList []File          `json:"file_list"`
	Params   CaptionerParams `json:"params"`
}

// EventRef is the backend's acknowledgement of a created job.
type EventRef struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

// StepResult is the completed output set of one step.
type StepResult struct {
	Files []File `json:"files"`
}

// JobState is the per-step execution state. A non-empty Exception marks the
// whole job as failed.
type JobState struct {
	Exception map[string]any `json:"exception"`
}

// EventResponse is the job status document. An empty object means the job is
// not yet known to the backend.
type EventResponse struct {
	Jobs      []JobSpec             `json:"jobs"`
	Results   map[StepID]StepResult `json:"results"`
	States    []JobState            `json:"states"`
	StartTime int64                 `json:"start_time"` // nanoseconds
}

// Empty reports whether the backend answered with "not yet known".
func (e EventResponse) Empty() bool {
	return len(e.Jobs) == 0 && len(e.Results) == 0 && len(e.States) == 0 && e.StartTime == 0
}

// Failed reports whether any step carries a non-empty exception.
func (e EventResponse) Failed() bool {
	for _, st := range e.States {
		if len(st.Exception) > 0 {
			return true
		}
	}
	return false
}

// Finished reports whether every declared step has a completed result.
func (e EventResponse) Finished() bool {
	return !e.Empty() && len(e.Results) == len(e.Jobs)
}

// DownloadResponse resolves a backend file path to a fetchable URL.
type DownloadResponse struct {
	DownloadURL string `json:"download_url"`
}
