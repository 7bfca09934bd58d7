package pipeline

import "github.com/jackdwave/ai-chatbot/backend"

// CaptionerRequest describes one caption-generation job: a source media
// locator, the language set to auto-detect and the translation targets.
type CaptionerRequest struct {
	FilePath           string
	DetectLanguages    []string
	TranslateLanguages []string
}

// NewCaptionerWorker builds the single-step captioner worker payload. The
// input file is always labeled "speech" and referenced by that label from the
// params.
func NewCaptionerWorker(req CaptionerRequest) backend.CaptionerWorker {
	return backend.CaptionerWorker{
		FileList: []backend.File{
			{Label: "speech", Path: req.FilePath},
		},
		Params: backend.CaptionerParams{
			AutoDetectLanguages:            req.DetectLanguages,
			File:                           "speech",
			PhrasesList:                    "",
			SpeechTranslateTargetLanguages: req.TranslateLanguages,
		},
	}
}
