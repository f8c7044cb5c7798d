// Package messages renders user-facing status text in the configured language.
package messages

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. They double as the English text.
const (
	keyEmptyTerm        = "Please enter a stop name"
	keyNoMatch          = "No stop matching “%s” in the list"
	keyInvalidSelection = "No valid stop selected"
	keyNetworkError     = "Network request failed"
	keyEmptyResult      = "No upcoming departures at %s"
	keySearching        = "Searching…"
	keyChooseStop       = "Several stops match, pick one"
	keyDeparturesAt     = "Departures at %s"
	keyMinutes          = "%d min"
)

var supported = []language.Tag{language.English, language.German, language.Chinese}

var cat = func() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))

	set := func(tag language.Tag, pairs ...string) {
		for i := 0; i+1 < len(pairs); i += 2 {
			b.SetString(tag, pairs[i], pairs[i+1])
		}
	}
	set(language.English,
		keyEmptyTerm, keyEmptyTerm,
		keyNoMatch, keyNoMatch,
		keyInvalidSelection, keyInvalidSelection,
		keyNetworkError, keyNetworkError,
		keyEmptyResult, keyEmptyResult,
		keySearching, keySearching,
		keyChooseStop, keyChooseStop,
		keyDeparturesAt, keyDeparturesAt,
		keyMinutes, keyMinutes,
	)
	set(language.German,
		keyEmptyTerm, "Bitte einen Haltestellennamen eingeben",
		keyNoMatch, "Keine Haltestelle „%s“ in der Liste gefunden",
		keyInvalidSelection, "Keine gültige Haltestelle ausgewählt",
		keyNetworkError, "Netzwerkanfrage fehlgeschlagen",
		keyEmptyResult, "Keine kommenden Abfahrten an %s",
		keySearching, "Suche…",
		keyChooseStop, "Mehrere Haltestellen gefunden, bitte eine wählen",
		keyDeparturesAt, "Abfahrten an %s",
		keyMinutes, "%d Min.",
	)
	set(language.Chinese,
		keyEmptyTerm, "请输入站点名称",
		keyNoMatch, "未在列表中找到“%s”",
		keyInvalidSelection, "未选择有效站点",
		keyNetworkError, "网络请求失败",
		keyEmptyResult, "%s 暂无未来班次",
		keySearching, "查询中…",
		keyChooseStop, "匹配到多个站点，请选择",
		keyDeparturesAt, "%s 发车信息",
		keyMinutes, "%d 分钟",
	)
	return b
}()

// Printer renders messages in one language.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// New returns a printer for the best supported match of lang ("de", "zh-CN",
// "en-GB", ...). Unknown or empty values fall back to English.
func New(lang string) *Printer {
	tag := language.English
	if t, err := language.Parse(lang); err == nil {
		_, i, conf := language.NewMatcher(supported).Match(t)
		if conf != language.No {
			tag = supported[i]
		}
	}
	return &Printer{tag: tag, p: message.NewPrinter(tag, message.Catalog(cat))}
}

// Language returns the language messages are rendered in.
func (p *Printer) Language() language.Tag { return p.tag }

func (p *Printer) EmptyTerm() string          { return p.p.Sprintf(keyEmptyTerm) }
func (p *Printer) NoMatch(term string) string { return p.p.Sprintf(keyNoMatch, term) }
func (p *Printer) InvalidSelection() string   { return p.p.Sprintf(keyInvalidSelection) }
func (p *Printer) NetworkError() string       { return p.p.Sprintf(keyNetworkError) }
func (p *Printer) EmptyResult(stop string) string {
	return p.p.Sprintf(keyEmptyResult, stop)
}
func (p *Printer) Searching() string               { return p.p.Sprintf(keySearching) }
func (p *Printer) ChooseStop() string              { return p.p.Sprintf(keyChooseStop) }
func (p *Printer) DeparturesAt(stop string) string { return p.p.Sprintf(keyDeparturesAt, stop) }
func (p *Printer) Minutes(n int) string            { return p.p.Sprintf(keyMinutes, n) }
