package pipeline

import (
	"fmt"

	"github.com/jackdwave/ai-chatbot/backend"
)

// ConversionRequest describes one voice-conversion job: a source media
// locator, the trim bounds in seconds, a semitone pitch offset and the
// selected voice model.
type ConversionRequest struct {
	SourceURL  string
	StartTime  int
	EndTime    int
	Pitch      int
	VoiceModel string
}

// Per-step parameter shapes. The backend dispatches on the exact field set of
// each worker, so these are reproduced verbatim from the pipeline contract.

type trimCutParams struct {
	File       []string          `json:"file"`
	OutputFile map[string]string `json:"output_file"`
	StartIndex string            `json:"start_index"`
	EndIndex   string            `json:"end_index"`
	Usage      string            `json:"usage"`
}

type separateParams struct {
	File         string   `json:"file"`
	IsOverlapAdd bool     `json:"is_overlapadd"`
	OriginalSR   bool     `json:"original_sr"`
	Stem         []string `json:"stem"`
}

type voiceConversionParams struct {
	EnablePitchCorrection bool             `json:"enable_pitch_correction"`
	F0Predictor           string           `json:"f0_predictor"`
	File                  string           `json:"file"`
	Mode                  string           `json:"mode"`
	Speakers              []string         `json:"speakers"`
	SpeakersPitch         map[string][]int `json:"speakers_pitch_adjustment"`
}

type mergeParams struct {
	File        []string          `json:"file"`
	Usage       string            `json:"usage"`
	MergeOption string            `json:"merge_option"`
	OutputFile  map[string]string `json:"output_file"`
}

type normalizeParams struct {
	File       []string          `json:"file"`
	Usage      string            `json:"usage"`
	TargetLUFS int               `json:"target_lufs"`
	TruePeak   int               `json:"true_peak"`
	OutputFile map[string]string `json:"output_file"`
}

// NewConversionWorkflow builds the fixed five-step voice-conversion job
// graph: trim the source to [StartTime, EndTime], separate vocals from
// accompaniment, convert the vocals at the requested pitch offset, remux the
// converted vocals with the original accompaniment, then loudness-normalize
// both mixes to -14 LUFS / -2 dBTP. The topology is static; each step names
// the prior-step outputs it consumes.
func NewConversionWorkflow(req ConversionRequest) backend.Workflow {
	startIndex := FormatSeconds(req.StartTime)
	endIndex := FormatSeconds(req.EndTime)

	// step_3 publishes its converted vocals under a key derived from the
	// model and pitch; step_4 must reference it by that exact name.
	vcResultKey := fmt.Sprintf("step_3__%s_key_%d", req.VoiceModel, req.Pitch)

	return backend.Workflow{
		Jobs: []backend.JobSpec{
			{
				RelationResultFiles: map[string]string{},
				FileList: []backend.File{
					{Label: "origin", Path: req.SourceURL},
				},
				JobID: backend.Step1,
				Params: trimCutParams{
					File:       []string{"origin"},
					OutputFile: map[string]string{"trim_cut_result": "trim_cut_result.wav"},
					StartIndex: startIndex,
					EndIndex:   endIndex,
					Usage:      "trim_cut",
				},
				WorkerName: "transformer",
			},
			{
				RelationResultFiles: map[string]string{
					"trim_cut_result": "step_1__trim_cut_result",
				},
				FileList: []backend.File{},
				JobID:    backend.Step2,
				Params: separateParams{
					File:         "trim_cut_result",
					IsOverlapAdd: true,
					OriginalSR:   false,
					Stem:         []string{"vocals"},
				},
				WorkerName: "svs",
			},
			{
				RelationResultFiles: map[string]string{
					"vocals": "step_2__vocals",
				},
				FileList: []backend.File{},
				JobID:    backend.Step3,
				Params: voiceConversionParams{
					EnablePitchCorrection: false,
					F0Predictor:           "rmvpe",
					File:                  "vocals",
					Mode:                  "sing",
					Speakers:              []string{req.VoiceModel},
					SpeakersPitch:         map[string][]int{req.VoiceModel: {req.Pitch}},
				},
				WorkerName: "vc",
			},
			{
				RelationResultFiles: map[string]string{
					"vc_result":     vcResultKey,
					"accompaniment": "step_2__accompaniment",
				},
				FileList: []backend.File{},
				JobID:    backend.Step4,
				Params: mergeParams{
					File:        []string{"vc_result", "accompaniment"},
					Usage:       "merge_audio_files",
					MergeOption: "stereo_audio",
					OutputFile:  map[string]string{"merged_result": "merged_result.wav"},
				},
				WorkerName: "transformer",
			},
			{
				RelationResultFiles: map[string]string{
					"vc_result":   "step_4__merged_result",
					"orig_result": "step_1__trim_cut_result",
				},
				FileList: []backend.File{},
				JobID:    backend.Step5,
				Params: normalizeParams{
					File:       []string{"vc_result", "orig_result"},
					Usage:      "audio_normalize",
					TargetLUFS: -14,
					TruePeak:   -2,
					OutputFile: map[string]string{
						"normalized_vc":   "normalized_vc.flac",
						"normalized_orig": "normalized_orig.flac",
					},
				},
				WorkerName: "transformer",
			},
		},
	}
}

// FormatSeconds renders a second count as HH:MM:SS, the time-index format the
// trim worker expects.
func FormatSeconds(s int) string {
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s/60)%60, s%60)
}
