// Package lang owns the store-language vocabulary: the storefront codes a
// catalog page can be fetched in, the symbolic "system" value, and the
// resolution of locale identifiers to storefront codes.
package lang

import (
	"os"
	"strings"

	"golang.org/x/text/language"

	"github.com/gameshelfapp/gameshelf-server/internal/errors"
)

// Code is a storefront language code ("english", "schinese", "brazilian").
// Storefront codes are not BCP 47 tags; Resolve maps tags onto them.
type Code string

// System is the symbolic value meaning "resolve from the host locale".
// It is never stored as an active language.
const System Code = "system"

// Default is the fallback when nothing matches.
const Default = English

const (
	Arabic     Code = "arabic"
	Brazilian  Code = "brazilian"
	Bulgarian  Code = "bulgarian"
	Czech      Code = "czech"
	Danish     Code = "danish"
	Dutch      Code = "dutch"
	English    Code = "english"
	Finnish    Code = "finnish"
	French     Code = "french"
	German     Code = "german"
	Greek      Code = "greek"
	Hungarian  Code = "hungarian"
	Indonesian Code = "indonesian"
	Italian    Code = "italian"
	Japanese   Code = "japanese"
	Koreana    Code = "koreana"
	Latam      Code = "latam"
	Norwegian  Code = "norwegian"
	Polish     Code = "polish"
	Portuguese Code = "portuguese"
	Romanian   Code = "romanian"
	Russian    Code = "russian"
	SChinese   Code = "schinese"
	Spanish    Code = "spanish"
	Swedish    Code = "swedish"
	TChinese   Code = "tchinese"
	Thai       Code = "thai"
	Turkish    Code = "turkish"
	Ukrainian  Code = "ukrainian"
	Vietnamese Code = "vietnamese"
)

// entry pairs a storefront code with its display name and the BCP 47 tag
// the matcher uses. Order matters: English first so the matcher falls back
// to it when confidence is too low.
type entry struct {
	code Code
	name string
	tag  language.Tag
}

//nolint:gochecknoglobals // Static vocabulary table
var vocabulary = []entry{
	{English, "English", language.English},
	{Arabic, "Arabic", language.Arabic},
	{Brazilian, "Portuguese (Brazil)", language.BrazilianPortuguese},
	{Bulgarian, "Bulgarian", language.Bulgarian},
	{Czech, "Czech", language.Czech},
	{Danish, "Danish", language.Danish},
	{Dutch, "Dutch", language.Dutch},
	{Finnish, "Finnish", language.Finnish},
	{French, "French", language.French},
	{German, "German", language.German},
	{Greek, "Greek", language.Greek},
	{Hungarian, "Hungarian", language.Hungarian},
	{Indonesian, "Indonesian", language.Indonesian},
	{Italian, "Italian", language.Italian},
	{Japanese, "Japanese", language.Japanese},
	{Koreana, "Korean", language.Korean},
	{Latam, "Spanish (Latin America)", language.LatinAmericanSpanish},
	{Norwegian, "Norwegian", language.Norwegian},
	{Polish, "Polish", language.Polish},
	{Portuguese, "Portuguese", language.EuropeanPortuguese},
	{Romanian, "Romanian", language.Romanian},
	{Russian, "Russian", language.Russian},
	{SChinese, "Chinese (Simplified)", language.SimplifiedChinese},
	{Spanish, "Spanish", language.EuropeanSpanish},
	{Swedish, "Swedish", language.Swedish},
	{TChinese, "Chinese (Traditional)", language.TraditionalChinese},
	{Thai, "Thai", language.Thai},
	{Turkish, "Turkish", language.Turkish},
	{Ukrainian, "Ukrainian", language.Ukrainian},
	{Vietnamese, "Vietnamese", language.Vietnamese},
}

// aliases maps locale identifiers to storefront codes where BCP 47 matching
// alone would pick the wrong variant or none at all. Keys are lowercase
// with dash separators.
//
//nolint:gochecknoglobals // Static lookup table
var aliases = map[string]Code{
	"zh-hans": SChinese,
	"zh-cn":   SChinese,
	"zh-sg":   SChinese,
	"zh-hant": TChinese,
	"zh-tw":   TChinese,
	"zh-hk":   TChinese,
	"zh-mo":   TChinese,
	"zh":      SChinese,
	"pt-br":   Brazilian,
	"pt":      Portuguese,
	"es-419":  Latam,
	"es-mx":   Latam,
	"es-ar":   Latam,
	"ko":      Koreana,
	"ko-kr":   Koreana,
	"nb":      Norwegian,
	"nn":      Norwegian,
}

//nolint:gochecknoglobals // Derived lookup structures, built once
var (
	byCode  = make(map[Code]entry, len(vocabulary))
	tags    = make([]language.Tag, len(vocabulary))
	matcher language.Matcher
)

func init() {
	for i, e := range vocabulary {
		byCode[e.code] = e
		tags[i] = e.tag
	}
	matcher = language.NewMatcher(tags)
}

// All returns every supported storefront code in vocabulary order.
func All() []Code {
	out := make([]Code, len(vocabulary))
	for i, e := range vocabulary {
		out[i] = e.code
	}
	return out
}

// IsSupported reports whether c is a concrete storefront code.
// The symbolic System value is not a concrete code.
func IsSupported(c Code) bool {
	_, ok := byCode[c]
	return ok
}

// DisplayName returns the English display name for a storefront code,
// or the code itself when unknown.
func (c Code) DisplayName() string {
	if e, ok := byCode[c]; ok {
		return e.name
	}
	return string(c)
}

// Resolve maps a requested language value to a concrete storefront code.
// Accepted forms, in order of precedence:
//
//  1. empty or "system"  → host locale resolution (FromLocale)
//  2. a storefront code  → itself ("english", "schinese", ...)
//  3. an alias           → its storefront code ("zh-Hans", "pt-BR", ...)
//  4. a BCP 47 tag       → nearest supported code via language matching
//
// Returns a validation error for values none of these recognize.
func Resolve(requested string) (Code, error) {
	s := strings.ToLower(strings.TrimSpace(requested))
	if s == "" || Code(s) == System {
		return FromLocale(), nil
	}
	if IsSupported(Code(s)) {
		return Code(s), nil
	}
	if c, ok := resolveLocale(s); ok {
		return c, nil
	}
	return "", errors.Validationf("unsupported language %q", requested)
}

// FromLocale resolves the host locale to a storefront code. It consults
// LC_ALL, LC_MESSAGES, and LANG in that order and falls back to Default
// when none of them name a supported language.
func FromLocale() Code {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if c, ok := resolveLocale(v); ok {
			return c
		}
	}
	return Default
}

// resolveLocale maps a single locale value ("pt_BR.UTF-8") to a code.
func resolveLocale(v string) (Code, bool) {
	s := normalizeLocale(v)
	if s == "" {
		return "", false
	}
	if c, ok := aliases[s]; ok {
		return c, true
	}
	return matchTag(s)
}

// matchTag runs a value through the BCP 47 matcher.
func matchTag(s string) (Code, bool) {
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return "", false
	}
	return vocabulary[idx].code, true
}

// normalizeLocale lowercases a locale identifier, strips any charset or
// modifier suffix ("pt_BR.UTF-8@euro" → "pt-br"), and canonicalizes the
// separator to a dash.
func normalizeLocale(v string) string {
	s := strings.ToLower(strings.TrimSpace(v))
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	return strings.ReplaceAll(s, "_", "-")
}
