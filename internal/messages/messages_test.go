package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestNew_Matching(t *testing.T) {
	tests := []struct {
		lang string
		want language.Tag
	}{
		{"", language.English},
		{"en", language.English},
		{"en-GB", language.English},
		{"de", language.German},
		{"de-AT", language.German},
		{"zh", language.Chinese},
		{"zh-CN", language.Chinese},
		{"not a tag", language.English},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(tt.lang).Language(), "lang %q", tt.lang)
	}
}

func TestPrinter_English(t *testing.T) {
	p := New("en")
	assert.Equal(t, "Please enter a stop name", p.EmptyTerm())
	assert.Equal(t, "No stop matching “xyz” in the list", p.NoMatch("xyz"))
	assert.Equal(t, "No upcoming departures at Borstei", p.EmptyResult("Borstei"))
	assert.Equal(t, "5 min", p.Minutes(5))
}

func TestPrinter_Translations(t *testing.T) {
	de := New("de")
	assert.Equal(t, "Netzwerkanfrage fehlgeschlagen", de.NetworkError())
	assert.Equal(t, "Keine kommenden Abfahrten an Borstei", de.EmptyResult("Borstei"))

	zh := New("zh")
	assert.Equal(t, "未在列表中找到“xyz”", zh.NoMatch("xyz"))
	assert.Equal(t, "Borstei 暂无未来班次", zh.EmptyResult("Borstei"))
	assert.Equal(t, "未选择有效站点", zh.InvalidSelection())
}

func TestPrinter_EmptyResultDiffersFromErrors(t *testing.T) {
	for _, lang := range []string{"en", "de", "zh"} {
		p := New(lang)
		msg := p.EmptyResult("Borstei")
		for _, other := range []string{p.EmptyTerm(), p.NoMatch("Borstei"), p.InvalidSelection(), p.NetworkError()} {
			assert.NotEqual(t, other, msg, lang)
		}
	}
}
