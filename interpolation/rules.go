package interpolation

// Rule says a recorded base emotion may stand in for an unrecorded
// target emotion. Rules are directional (base -> target) and scanned
// in table order; the first rule whose target matches wins. Speed and
// pitch factors describe how to adjust delivery of the base sample so
// it reads as the target.
type Rule struct {
	BaseEmotion    string
	TargetEmotion  string
	IntensityDelta int
	SpeedFactor    float64
	PitchFactor    float64
}

// DefaultRules is the built-in substitution table. Many targets may
// share one base; the table is immutable at runtime.
var DefaultRules = []Rule{
	{BaseEmotion: "grief", TargetEmotion: "despair", IntensityDelta: 2, SpeedFactor: 0.85, PitchFactor: 0.92},
	{BaseEmotion: "sadness", TargetEmotion: "grief", IntensityDelta: 3, SpeedFactor: 0.80, PitchFactor: 0.90},
	{BaseEmotion: "sadness", TargetEmotion: "melancholy", IntensityDelta: -1, SpeedFactor: 0.90, PitchFactor: 0.95},
	{BaseEmotion: "joy", TargetEmotion: "excitement", IntensityDelta: 2, SpeedFactor: 1.15, PitchFactor: 1.10},
	{BaseEmotion: "joy", TargetEmotion: "delight", IntensityDelta: 1, SpeedFactor: 1.10, PitchFactor: 1.05},
	{BaseEmotion: "joy", TargetEmotion: "contentment", IntensityDelta: -2, SpeedFactor: 0.95, PitchFactor: 1.00},
	{BaseEmotion: "anger", TargetEmotion: "rage", IntensityDelta: 3, SpeedFactor: 1.20, PitchFactor: 1.08},
	{BaseEmotion: "anger", TargetEmotion: "irritation", IntensityDelta: -2, SpeedFactor: 1.05, PitchFactor: 1.02},
	{BaseEmotion: "fear", TargetEmotion: "terror", IntensityDelta: 3, SpeedFactor: 1.25, PitchFactor: 1.15},
	{BaseEmotion: "fear", TargetEmotion: "anxiety", IntensityDelta: -1, SpeedFactor: 1.10, PitchFactor: 1.05},
	{BaseEmotion: "surprise", TargetEmotion: "shock", IntensityDelta: 2, SpeedFactor: 1.15, PitchFactor: 1.12},
	{BaseEmotion: "surprise", TargetEmotion: "wonder", IntensityDelta: -1, SpeedFactor: 0.90, PitchFactor: 1.05},
	{BaseEmotion: "disgust", TargetEmotion: "contempt", IntensityDelta: 0, SpeedFactor: 0.95, PitchFactor: 0.98},
	{BaseEmotion: "calm", TargetEmotion: "serenity", IntensityDelta: -1, SpeedFactor: 0.85, PitchFactor: 0.97},
	{BaseEmotion: "calm", TargetEmotion: "boredom", IntensityDelta: -2, SpeedFactor: 0.80, PitchFactor: 0.95},
}

// RuleFor returns the first rule in table order whose target matches,
// or nil when no substitution is defined for the emotion.
func RuleFor(rules []Rule, targetEmotion string) *Rule {
	for i := range rules {
		if rules[i].TargetEmotion == targetEmotion {
			return &rules[i]
		}
	}
	return nil
}
