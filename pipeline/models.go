package pipeline

// VoiceModels are the pre-trained voice-conversion models the backend
// accepts, keyed by the exact speaker names it knows.
var VoiceModels = []string{
	"伍佰",
	"吳青峰",
	"張惠妹",
	"王菲",
	"米津玄師",
	"Beatles",
	"BonJovi",
	"LadyGaga",
	"WhitneyHouston",
	"Yoasobi",
	"gura",
}

var modelLabels = map[string]string{
	"Beatles":        "beetles",
	"BonJovi":        "Don Covi",
	"LadyGaga":       "Gen Kaka",
	"WhitneyHouston": "Wheny Houstion",
	"伍佰":             "五百萬",
	"張惠妹":            "章蕙媚",
	"吳青峰":            "無清風",
	"Yoasobi":        "Yoarsobad",
	"王菲":             "王飛",
	"米津玄師":           "高筋律師",
	"gura":           "Kula",
}

// ModelLabel maps a voice model to its display label. Unknown models fall
// back to the model name itself.
func ModelLabel(model string) string {
	if label, ok := modelLabels[model]; ok {
		return label
	}
	return model
}

// IsKnownModel reports whether model is one of the supported voice models.
func IsKnownModel(model string) bool {
	for _, m := range VoiceModels {
		if m == model {
			return true
		}
	}
	return false
}
