package pipeline

import (
	"errors"
	"strings"

	"github.com/jackdwave/ai-chatbot/backend"
)

// ErrNoOutputs is returned when the result set contains neither the
// normalization outputs nor any usable fallback.
var ErrNoOutputs = errors.New("pipeline: no resolvable audio outputs in results")

// ConversionOutputs are the final file references of a finished conversion.
type ConversionOutputs struct {
	SourceAudioPath    string // trimmed original mix
	ConvertedAudioPath string // converted mix
	ModelLabel         string // display label derived from the conversion step
}

// ResolveConversionOutputs selects the final audio references from a finished
// job's step results.
//
// Resolution policy, v1: outputs are taken preferentially from the
// normalization step (step_5: files[0] converted, files[1] source). When a
// partial pipeline ran without normalization, the converted mix falls back to
// the merge step (step_4, files[0]) and the source to the trim step (step_1,
// files[0]). Downstream consumers must tolerate this chain; an absent key is
// a legal partial pipeline, not an error, as long as one link resolves.
func ResolveConversionOutputs(results map[backend.StepID]backend.StepResult) (ConversionOutputs, error) {
	var out ConversionOutputs

	// Each link falls back independently: a step_5 result with a single file
	// still supplies the converted mix while the source comes from step_1.
	step5 := results[backend.Step5].Files
	if len(step5) > 1 {
		out.SourceAudioPath = step5[1].Path
	} else if files := results[backend.Step1].Files; len(files) > 0 {
		out.SourceAudioPath = files[0].Path
	}
	if len(step5) > 0 {
		out.ConvertedAudioPath = step5[0].Path
	} else if files := results[backend.Step4].Files; len(files) > 0 {
		out.ConvertedAudioPath = files[0].Path
	}

	if out.SourceAudioPath == "" || out.ConvertedAudioPath == "" {
		return ConversionOutputs{}, ErrNoOutputs
	}

	// The conversion step labels its output "<model>_<key>"; the prefix is
	// the display label.
	if files := results[backend.Step3].Files; len(files) > 0 {
		out.ModelLabel = strings.SplitN(files[0].Label, "_", 2)[0]
	}

	return out, nil
}
