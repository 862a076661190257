// internal/bible/books.go
package bible

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Book holds the static reference data for one book of the canon.
type Book struct {
	Name     string `json:"name"`
	Order    int    `json:"order"`    // 1-based canonical position
	Chapters int    `json:"chapters"` // number of chapters
}

// books lists the 66-book Protestant canon in canonical order.
var books = []Book{
	// Old Testament
	{"Genesis", 1, 50},
	{"Exodus", 2, 40},
	{"Leviticus", 3, 27},
	{"Numbers", 4, 36},
	{"Deuteronomy", 5, 34},
	{"Joshua", 6, 24},
	{"Judges", 7, 21},
	{"Ruth", 8, 4},
	{"1 Samuel", 9, 31},
	{"2 Samuel", 10, 24},
	{"1 Kings", 11, 22},
	{"2 Kings", 12, 25},
	{"1 Chronicles", 13, 29},
	{"2 Chronicles", 14, 36},
	{"Ezra", 15, 10},
	{"Nehemiah", 16, 13},
	{"Esther", 17, 10},
	{"Job", 18, 42},
	{"Psalms", 19, 150},
	{"Proverbs", 20, 31},
	{"Ecclesiastes", 21, 12},
	{"Song of Solomon", 22, 8},
	{"Isaiah", 23, 66},
	{"Jeremiah", 24, 52},
	{"Lamentations", 25, 5},
	{"Ezekiel", 26, 48},
	{"Daniel", 27, 12},
	{"Hosea", 28, 14},
	{"Joel", 29, 3},
	{"Amos", 30, 9},
	{"Obadiah", 31, 1},
	{"Jonah", 32, 4},
	{"Micah", 33, 7},
	{"Nahum", 34, 3},
	{"Habakkuk", 35, 3},
	{"Zephaniah", 36, 3},
	{"Haggai", 37, 2},
	{"Zechariah", 38, 14},
	{"Malachi", 39, 4},
	// New Testament
	{"Matthew", 40, 28},
	{"Mark", 41, 16},
	{"Luke", 42, 24},
	{"John", 43, 21},
	{"Acts", 44, 28},
	{"Romans", 45, 16},
	{"1 Corinthians", 46, 16},
	{"2 Corinthians", 47, 13},
	{"Galatians", 48, 6},
	{"Ephesians", 49, 6},
	{"Philippians", 50, 4},
	{"Colossians", 51, 4},
	{"1 Thessalonians", 52, 5},
	{"2 Thessalonians", 53, 3},
	{"1 Timothy", 54, 6},
	{"2 Timothy", 55, 4},
	{"Titus", 56, 3},
	{"Philemon", 57, 1},
	{"Hebrews", 58, 13},
	{"James", 59, 5},
	{"1 Peter", 60, 5},
	{"2 Peter", 61, 3},
	{"1 John", 62, 5},
	{"2 John", 63, 1},
	{"3 John", 64, 1},
	{"Jude", 65, 1},
	{"Revelation", 66, 22},
}

// aliases maps abbreviations and Portuguese names to canonical names.
// Keys are folded with foldName before use.
var aliases = map[string]string{
	"gen": "Genesis", "gn": "Genesis", "genesis": "Genesis",
	"ex": "Exodus", "exo": "Exodus", "exodo": "Exodus",
	"lev": "Leviticus", "lv": "Leviticus", "levitico": "Leviticus",
	"num": "Numbers", "nm": "Numbers", "numeros": "Numbers",
	"deut": "Deuteronomy", "dt": "Deuteronomy", "deuteronomio": "Deuteronomy",
	"josh": "Joshua", "js": "Joshua", "josue": "Joshua",
	"judg": "Judges", "jz": "Judges", "juizes": "Judges",
	"rute": "Ruth", "rt": "Ruth",
	"1sam": "1 Samuel", "1sm": "1 Samuel",
	"2sam": "2 Samuel", "2sm": "2 Samuel",
	"1kgs": "1 Kings", "1reis": "1 Kings", "1rs": "1 Kings",
	"2kgs": "2 Kings", "2reis": "2 Kings", "2rs": "2 Kings",
	"1chr": "1 Chronicles", "1cronicas": "1 Chronicles", "1cr": "1 Chronicles",
	"2chr": "2 Chronicles", "2cronicas": "2 Chronicles", "2cr": "2 Chronicles",
	"esdras": "Ezra", "ed": "Ezra",
	"neh": "Nehemiah", "neemias": "Nehemiah", "ne": "Nehemiah",
	"est": "Esther", "ester": "Esther", "et": "Esther",
	"jo": "Job", "jó": "Job",
	"ps": "Psalms", "psa": "Psalms", "psalm": "Psalms", "salmos": "Psalms", "salmo": "Psalms", "sl": "Psalms",
	"prov": "Proverbs", "pv": "Proverbs", "proverbios": "Proverbs",
	"eccl": "Ecclesiastes", "ec": "Ecclesiastes", "eclesiastes": "Ecclesiastes",
	"songofsongs": "Song of Solomon", "song": "Song of Solomon", "canticos": "Song of Solomon",
	"canticodoscanticos": "Song of Solomon", "ct": "Song of Solomon",
	"isa": "Isaiah", "is": "Isaiah", "isaias": "Isaiah",
	"jer": "Jeremiah", "jr": "Jeremiah", "jeremias": "Jeremiah",
	"lam": "Lamentations", "lm": "Lamentations", "lamentacoes": "Lamentations",
	"ezek": "Ezekiel", "ez": "Ezekiel", "ezequiel": "Ezekiel",
	"dan": "Daniel", "dn": "Daniel",
	"hos": "Hosea", "os": "Hosea", "oseias": "Hosea",
	"jl": "Joel",
	"am": "Amos", "amós": "Amos",
	"obad": "Obadiah", "ob": "Obadiah", "obadias": "Obadiah",
	"jon": "Jonah", "jonas": "Jonah",
	"mic": "Micah", "mq": "Micah", "miqueias": "Micah",
	"nah": "Nahum", "na": "Nahum", "naum": "Nahum",
	"hab": "Habakkuk", "hc": "Habakkuk", "habacuque": "Habakkuk",
	"zeph": "Zephaniah", "sf": "Zephaniah", "sofonias": "Zephaniah",
	"hag": "Haggai", "ag": "Haggai", "ageu": "Haggai",
	"zech": "Zechariah", "zc": "Zechariah", "zacarias": "Zechariah",
	"mal": "Malachi", "ml": "Malachi", "malaquias": "Malachi",
	"matt": "Matthew", "mt": "Matthew", "mateus": "Matthew",
	"mk": "Mark", "mc": "Mark", "marcos": "Mark",
	"lk": "Luke", "lc": "Luke", "lucas": "Luke",
	"jhn": "John", "joao": "John",
	"at": "Acts", "atos": "Acts",
	"rom": "Romans", "rm": "Romans", "romanos": "Romans",
	"1cor": "1 Corinthians", "1co": "1 Corinthians", "1corintios": "1 Corinthians",
	"2cor": "2 Corinthians", "2co": "2 Corinthians", "2corintios": "2 Corinthians",
	"gal": "Galatians", "gl": "Galatians", "galatas": "Galatians",
	"eph": "Ephesians", "ef": "Ephesians", "efesios": "Ephesians",
	"phil": "Philippians", "fp": "Philippians", "filipenses": "Philippians",
	"col": "Colossians", "cl": "Colossians", "colossenses": "Colossians",
	"1thess": "1 Thessalonians", "1ts": "1 Thessalonians", "1tessalonicenses": "1 Thessalonians",
	"2thess": "2 Thessalonians", "2ts": "2 Thessalonians", "2tessalonicenses": "2 Thessalonians",
	"1tim": "1 Timothy", "1tm": "1 Timothy", "1timoteo": "1 Timothy",
	"2tim": "2 Timothy", "2tm": "2 Timothy", "2timoteo": "2 Timothy",
	"tit": "Titus", "tt": "Titus", "tito": "Titus",
	"phlm": "Philemon", "fm": "Philemon", "filemom": "Philemon",
	"heb": "Hebrews", "hb": "Hebrews", "hebreus": "Hebrews",
	"jas": "James", "tg": "James", "tiago": "James",
	"1pet": "1 Peter", "1pe": "1 Peter", "1pedro": "1 Peter",
	"2pet": "2 Peter", "2pe": "2 Peter", "2pedro": "2 Peter",
	"1jn": "1 John", "1jo": "1 John", "1joao": "1 John",
	"2jn": "2 John", "2jo": "2 John", "2joao": "2 John",
	"3jn": "3 John", "3jo": "3 John", "3joao": "3 John",
	"jd": "Jude", "judas": "Jude",
	"rev": "Revelation", "ap": "Revelation", "apocalipse": "Revelation",
}

var (
	byName   = make(map[string]Book, len(books))
	byFolded = make(map[string]Book, len(books)+len(aliases))
)

func init() {
	for _, b := range books {
		byName[b.Name] = b
		byFolded[foldName(b.Name)] = b
	}
	for alias, name := range aliases {
		key := foldName(alias)
		if _, taken := byFolded[key]; taken {
			continue
		}
		byFolded[key] = byName[name]
	}
}

// Books returns a copy of the canonical book table.
func Books() []Book {
	out := make([]Book, len(books))
	copy(out, books)
	return out
}

// BookByName returns the book with the exact canonical name.
func BookByName(name string) (Book, bool) {
	b, ok := byName[name]
	return b, ok
}

// LookupBook resolves a user-supplied book name, ignoring case, whitespace
// and diacritics. Aliases and abbreviations are accepted.
func LookupBook(name string) (Book, bool) {
	key := foldName(name)
	if key == "" {
		return Book{}, false
	}
	b, ok := byFolded[key]
	return b, ok
}

// foldName lowercases s, strips combining marks and removes all whitespace.
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '.' {
			return -1
		}
		return r
	}, folded)
}
