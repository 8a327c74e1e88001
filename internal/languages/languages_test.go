package languages

import "testing"

func TestParse(t *testing.T) {
	c, err := Parse("DE")
	if err != nil {
		t.Fatalf("Parse(DE): %v", err)
	}
	if c != DE {
		t.Fatalf("Parse(DE): want=%s got=%s", DE, c)
	}
	if c.Name() != "German" {
		t.Fatalf("Name: want=German got=%s", c.Name())
	}
	if c.VoiceTag() != "de-DE" {
		t.Fatalf("VoiceTag: want=de-DE got=%s", c.VoiceTag())
	}

	if _, err := Parse("XX"); err == nil {
		t.Fatalf("Parse(XX): expected error")
	}
	if _, err := Parse(""); err == nil {
		t.Fatalf("Parse empty: expected error")
	}
}
