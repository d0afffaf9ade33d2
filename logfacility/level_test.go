package logfacility

import "testing"

func TestLevelStringAndShort(t *testing.T) {
	cases := []struct {
		level Level
		word  string
		short string
	}{
		{Debug, "debug", "D"},
		{Info, "info", "I"},
		{Warning, "warning", "W"},
		{Error, "error", "E"},
		{Fatal, "fatal", "F"},
		{LevelNothing, "nothing", "N"},
	}
	for _, c := range cases {
		if got := c.level.String(); got != c.word {
			t.Errorf("Level(%d).String() = %q, want %q", c.level, got, c.word)
		}
		if got := c.level.Short(); got != c.short {
			t.Errorf("Level(%d).Short() = %q, want %q", c.level, got, c.short)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, word := range []string{"debug", "DEBUG", "d", "D"} {
		if lv, ok := ParseLevel(word); !ok || lv != Debug {
			t.Errorf("ParseLevel(%q) = %v, %v, want Debug, true", word, lv, ok)
		}
	}
	if _, ok := ParseLevel("bogus"); ok {
		t.Errorf("ParseLevel(bogus) should fail")
	}
}
