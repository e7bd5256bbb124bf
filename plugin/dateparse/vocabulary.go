package dateparse

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// alias maps a (possibly multi-word) phrase to a canonical value.
type alias[T any] struct {
	words []string
	value T
}

// vocabulary is an ordered alias list. Longer phrases come first so a short
// alias can never shadow a longer one that contains it.
type vocabulary[T any] []alias[T]

func newVocabulary[T any](entries map[string]T) vocabulary[T] {
	v := make(vocabulary[T], 0, len(entries))
	for phrase, value := range entries {
		v = append(v, alias[T]{words: strings.Fields(phrase), value: value})
	}
	sort.Slice(v, func(i, j int) bool {
		li, lj := v[i].runeLen(), v[j].runeLen()
		if li != lj {
			return li > lj
		}
		if len(v[i].words) != len(v[j].words) {
			return len(v[i].words) > len(v[j].words)
		}
		// Map iteration is random; keep the order stable.
		return v[i].phrase() < v[j].phrase()
	})
	return v
}

func (a alias[T]) phrase() string {
	return strings.Join(a.words, " ")
}

func (a alias[T]) runeLen() int {
	n := len(a.words) - 1
	for _, w := range a.words {
		n += utf8.RuneCountInString(w)
	}
	return n
}

// find returns the first alias, in priority order, that occurs in words.
func (v vocabulary[T]) find(words []string) (alias[T], bool) {
	for _, a := range v {
		if containsPhrase(words, a.words) {
			return a, true
		}
	}
	return alias[T]{}, false
}

// lookup matches a single word exactly.
func (v vocabulary[T]) lookup(word string) (T, bool) {
	for _, a := range v {
		if len(a.words) == 1 && a.words[0] == word {
			return a.value, true
		}
	}
	var zero T
	return zero, false
}

// containsPhrase reports whether phrase occurs as a contiguous run of whole words.
func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
outer:
	for i := 0; i+len(phrase) <= len(words); i++ {
		for j, p := range phrase {
			if words[i+j] != p {
				continue outer
			}
		}
		return true
	}
	return false
}

var relativeDays = newVocabulary(map[string]int{
	"сегодня":      0,
	"седня":        0,
	"завтра":       1,
	"послезавтра":  2,
	"после завтра": 2,
})

var weekdays = newVocabulary(map[string]time.Weekday{
	"понедельник": time.Monday, "пн": time.Monday, "пон": time.Monday,
	"вторник": time.Tuesday, "вт": time.Tuesday, "втор": time.Tuesday,
	"среда": time.Wednesday, "среду": time.Wednesday, "ср": time.Wednesday, "сред": time.Wednesday,
	"четверг": time.Thursday, "чт": time.Thursday, "четв": time.Thursday,
	"пятница": time.Friday, "пятницу": time.Friday, "пт": time.Friday, "пятн": time.Friday,
	"суббота": time.Saturday, "субботу": time.Saturday, "сб": time.Saturday, "субб": time.Saturday,
	"воскресенье": time.Sunday, "вс": time.Sunday, "воскр": time.Sunday,
})

var nextModifiers = newVocabulary(map[string]bool{
	"следующий": true,
	"следующую": true,
	"следующая": true,
	"следующее": true,
	"следующей": true,
	"следующем": true,
	"след":      true,
})

var months = newVocabulary(map[string]time.Month{
	"январь": time.January, "января": time.January, "янв": time.January,
	"февраль": time.February, "февраля": time.February, "фев": time.February, "февр": time.February,
	"март": time.March, "марта": time.March, "мар": time.March,
	"апрель": time.April, "апреля": time.April, "апр": time.April,
	"май": time.May, "мая": time.May,
	"июнь": time.June, "июня": time.June, "июн": time.June,
	"июль": time.July, "июля": time.July, "июл": time.July,
	"август": time.August, "августа": time.August, "авг": time.August,
	"сентябрь": time.September, "сентября": time.September, "сен": time.September, "сент": time.September,
	"октябрь": time.October, "октября": time.October, "окт": time.October,
	"ноябрь": time.November, "ноября": time.November, "ноя": time.November, "нояб": time.November,
	"декабрь": time.December, "декабря": time.December, "дек": time.December,
})

// timeMarkers are the prepositions that introduce a time of day ("в 15:00", "к 9").
var timeMarkers = map[string]bool{
	"в":  true,
	"во": true,
	"к":  true,
}
