package languages

import "fmt"

// Code is a supported story language.
type Code string

const (
	DE Code = "DE"
	EN Code = "EN"
)

var names = map[Code]string{
	DE: "German",
	EN: "English",
}

// Voice language tags used by the speech synthesizer.
var voiceTags = map[Code]string{
	DE: "de-DE",
	EN: "en-US",
}

func IsSupported(c Code) bool {
	_, ok := names[c]
	return ok
}

// Parse validates a raw request value against the supported set.
func Parse(raw string) (Code, error) {
	c := Code(raw)
	if !IsSupported(c) {
		return "", fmt.Errorf("unsupported language code %q", raw)
	}
	return c, nil
}

// Name returns the English display name used in generation prompts.
func (c Code) Name() string {
	return names[c]
}

func (c Code) VoiceTag() string {
	return voiceTags[c]
}
