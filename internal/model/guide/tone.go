package guide

// Tone selects the audience style used to tailor explanation language.
type Tone string

const (
	ToneKids    Tone = "kids"
	ToneGeneral Tone = "general"
	ToneCurious Tone = "curious"
	ToneExpert  Tone = "expert"
	ToneCustom  Tone = "custom"
)

// Valid reports whether the value is one of the recognized tones.
func (t Tone) Valid() bool {
	switch t {
	case ToneKids, ToneGeneral, ToneCurious, ToneExpert, ToneCustom:
		return true
	}
	return false
}
