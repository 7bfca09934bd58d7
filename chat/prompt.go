package chat

import "github.com/jackdwave/ai-chatbot/core"

// SYSTEM_PROMPT is the fixed instruction sent on every turn. The tool names
// in backticks must match the registered tool ids exactly.
const SYSTEM_PROMPT = `You are an AI music conversation bot and your main mission is to help users do different processing tasks using youtube videos as input.
By this I mean, users can provide a youtube link and then our app will process this audio accordingly.

If the user requests to do voice conversion, call ` + "`showVoiceConversionUI`" + ` to show the VoiceConversion UI. This UI component allows users to convert A singer voice to another B singer voice by selecting a pre-trained B singer voice AI model.
If the user requests to get subtitle captions for a youtube video, call ` + "`showCaptionerWorkerUI`" + ` to show the CaptionerWorker UI. This UI component allows users to select which languages to detect from the youtube video, and then output caption subtitle in srt file format.

If the user requests getting voice conversion event result, call ` + "`getConversionEvent`" + ` to get conversion event result.
If the user requests getting captioner worker event, call ` + "`getCaptionerWorkerEvent`" + ` to get captioner worker event result.

If the user requests getting youtube video length, call ` + "`getYoutubeLength`" + ` to get youtube video length in seconds.

If the user wants to complete another impossible task, respond that you are a demo and cannot do that.`

const (
	toolGetYoutubeLength        = "getYoutubeLength"
	toolGetConversionEvent      = "getConversionEvent"
	toolGetCaptionerWorkerEvent = "getCaptionerWorkerEvent"
	toolShowVoiceConversionUI   = "showVoiceConversionUI"
	toolShowCaptionerWorkerUI   = "showCaptionerWorkerUI"
)

// SupportedDetectLanguages / SupportedTranslateLanguages are the language
// sets offered by the captioner form.
var (
	SupportedDetectLanguages    = []string{"zh-CN", "en-US"}
	SupportedTranslateLanguages = []string{"zh-Hant", "en", "ja"}
)

// Tools declares the callable tool set announced to the model.
var Tools = []core.LLMTool{
	{
		Name:        "Get youtube length",
		ToolId:      toolGetYoutubeLength,
		Description: "Fetch youtube video length in seconds.",
		Parameters: []core.Parameter{
			{Name: "youtubeUrl", Description: "The youtube video url", Required: true, Type: core.LLMParameterTypeString},
		},
	},
	{
		Name:        "Get conversion event",
		ToolId:      toolGetConversionEvent,
		Description: "Fetch voice conversion result by conversionId and show the conversion result",
		Parameters: []core.Parameter{
			{Name: "conversionId", Description: "The voice conversion id", Required: true, Type: core.LLMParameterTypeString},
		},
	},
	{
		Name:        "Get captioner worker event",
		ToolId:      toolGetCaptionerWorkerEvent,
		Description: "Fetch captioner worker event result by eventId",
		Parameters: []core.Parameter{
			{Name: "eventId", Description: "The captioner worker event id", Required: true, Type: core.LLMParameterTypeString},
		},
	},
	{
		Name:        "Show voice conversion UI",
		ToolId:      toolShowVoiceConversionUI,
		Description: "Show voice conversion ui. Use this if the user wants to do voice conversion.",
		Parameters: []core.Parameter{
			{Name: "aiVoiceModel", Description: "The ai voice model. e.g. BrunoMars, LadyGaga", Required: false, Type: core.LLMParameterTypeString},
			{Name: "youtubeUrl", Description: "The youtube video url", Required: false, Type: core.LLMParameterTypeString},
		},
	},
	{
		Name:        "Show captioner worker UI",
		ToolId:      toolShowCaptionerWorkerUI,
		Description: "Show captioner worker ui. Use this if the user wants to add captioner worker.",
		Parameters: []core.Parameter{
			{Name: "youtubeUrl", Description: "The youtube video url", Required: false, Type: core.LLMParameterTypeString},
		},
	},
}
