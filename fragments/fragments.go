package fragments

// TextFragment carries assistant free text. While the model is still
// generating, successive updates replace the fragment with the accumulated
// text so far; Streaming marks those intermediate states.
type TextFragment struct {
	Text      string `json:"text"`
	Streaming bool   `json:"streaming,omitempty"`
}

func (*TextFragment) Kind() string { return "text" }

// UserFragment echoes a user message into the display log.
type UserFragment struct {
	Text string `json:"text"`
}

func (*UserFragment) Kind() string { return "user" }

// SystemFragment renders a system notice (e.g. "workflow created").
type SystemFragment struct {
	Text string `json:"text"`
}

func (*SystemFragment) Kind() string { return "system" }

// ProcessingFragment is the spinner card shown while a tool handler or the
// polling engine is still working.
type ProcessingFragment struct {
	Message    string `json:"message,omitempty"`
	ShowAvatar bool   `json:"showAvatar"`
}

func (*ProcessingFragment) Kind() string { return "processing" }

// SkeletonFragment is the loading placeholder shown before a tool produces
// its first real content.
type SkeletonFragment struct{}

func (*SkeletonFragment) Kind() string { return "skeleton" }

// ErrorFragment is the generic failure card. Every job-level error path
// (submission, poll fetch, step exception, ambiguous timeout) collapses to
// this shape for rendering.
type ErrorFragment struct {
	Message string `json:"message"`
}

func (*ErrorFragment) Kind() string { return "error" }

// VideoFragment embeds a video with its duration in seconds.
type VideoFragment struct {
	EmbedURL          string `json:"embedUrl"`
	DurationInSeconds int    `json:"durationInSeconds,omitempty"`
}

func (*VideoFragment) Kind() string { return "video" }

// FormStatus mirrors the lifecycle of an interactive form fragment.
type FormStatus string

const (
	FormStatusRequiresAction FormStatus = "requires_action"
	FormStatusProcessing     FormStatus = "processing"
	FormStatusCompleted      FormStatus = "completed"
	FormStatusFailed         FormStatus = "failed"
)

// ConversionFormFragment asks the user to pick a voice model and confirm a
// source video for voice conversion.
type ConversionFormFragment struct {
	Status      FormStatus `json:"status"`
	VoiceModels []string   `json:"voiceModels"`
	VoiceModel  string     `json:"voiceModel,omitempty"`
	YoutubeURL  string     `json:"youtubeUrl,omitempty"`
}

func (*ConversionFormFragment) Kind() string { return "conversion_form" }

// CaptionerFormFragment asks the user to pick detect/translate language sets
// for caption generation.
type CaptionerFormFragment struct {
	Status             FormStatus `json:"status"`
	YoutubeURL         string     `json:"youtubeUrl,omitempty"`
	DetectLanguages    []string   `json:"detectLanguages"`
	TranslateLanguages []string   `json:"translateLanguages"`
}

func (*CaptionerFormFragment) Kind() string { return "captioner_form" }

// WorkflowCreatedFragment is the finalized placeholder returned by the start
// actions: it names the created job and carries the follow-up message the
// user can send to fetch the result.
type WorkflowCreatedFragment struct {
	EventID       string `json:"eventId"`
	Summary       string `json:"summary"`
	FollowUpInput string `json:"followUpInput"`
}

func (*WorkflowCreatedFragment) Kind() string { return "workflow_created" }

// ConversionResultFragment presents a finished voice conversion: the original
// source and the converted mix, both resolved to downloadable URLs.
type ConversionResultFragment struct {
	ConversionID      string `json:"conversionId"`
	OriginURL         string `json:"originUrl"`
	ModelLabel        string `json:"modelLabel"`
	SourceAudioURL    string `json:"sourceAudioUrl"`
	ConvertedAudioURL string `json:"convertedAudioUrl"`
}

func (*ConversionResultFragment) Kind() string { return "conversion_result" }

// CaptionDownload is one produced subtitle file.
type CaptionDownload struct {
	Label       string `json:"label"`
	DownloadURL string `json:"downloadUrl"`
}

// CaptionerResultFragment presents finished captions: the source video embed
// plus one download link per produced subtitle file.
type CaptionerResultFragment struct {
	EventID   string            `json:"eventId"`
	EmbedURL  string            `json:"embedUrl,omitempty"`
	Downloads []CaptionDownload `json:"downloads"`
}

func (*CaptionerResultFragment) Kind() string { return "captioner_result" }
