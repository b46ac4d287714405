package tesseract

import "strings"

// knownLanguages is the set of language and script codes shipped as
// official traineddata files. --list-langs output is filtered against it,
// which also drops the heading line.
var knownLanguages = makeSet(
	// languages
	"afr", "amh", "ara", "asm", "aze", "aze_cyrl", "bel", "ben", "bod",
	"bos", "bre", "bul", "cat", "ceb", "ces", "chi_sim", "chi_sim_vert",
	"chi_tra", "chi_tra_vert", "chr", "cos", "cym", "dan", "dan_frak",
	"deu", "deu_frak", "div", "dzo", "ell", "eng", "enm", "epo", "equ",
	"est", "eus", "fao", "fas", "fil", "fin", "fra", "frk", "frm", "fry",
	"gla", "gle", "glg", "grc", "guj", "hat", "heb", "hin", "hrv", "hun",
	"hye", "iku", "ind", "isl", "ita", "ita_old", "jav", "jpn", "jpn_vert",
	"kan", "kat", "kat_old", "kaz", "khm", "kir", "kmr", "kor", "kor_vert",
	"lao", "lat", "lav", "lit", "ltz", "mal", "mar", "mkd", "mlt", "mon",
	"mri", "msa", "mya", "nep", "nld", "nor", "oci", "ori", "osd", "pan",
	"pol", "por", "pus", "que", "ron", "rus", "san", "sin", "slk",
	"slk_frak", "slv", "snd", "spa", "spa_old", "sqi", "srp", "srp_latn",
	"sun", "swa", "swe", "syr", "tam", "tat", "tel", "tgk", "tgl", "tha",
	"tir", "ton", "tur", "uig", "ukr", "urd", "uzb", "uzb_cyrl", "vie",
	"yid", "yor",
	// script packs
	"Arabic", "Armenian", "Bengali", "Canadian_Aboriginal", "Cherokee",
	"Cyrillic", "Devanagari", "Ethiopic", "Fraktur", "Georgian", "Greek",
	"Gujarati", "Gurmukhi", "HanS", "HanS_vert", "HanT", "HanT_vert",
	"Hangul", "Hangul_vert", "Hebrew", "Japanese", "Japanese_vert",
	"Kannada", "Khmer", "Lao", "Latin", "Malayalam", "Myanmar", "Oriya",
	"Sinhala", "Syriac", "Tamil", "Telugu", "Thaana", "Thai", "Tibetan",
	"Vietnamese",
)

func makeSet(codes ...string) map[string]bool {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}

// ValidateLanguages checks that every `+`-separated element of langs names
// a known language or script pack. It returns true and an empty string on
// success, or false and a reason naming the first unknown element.
func ValidateLanguages(langs string) (ok bool, reason string) {
	for _, elem := range strings.Split(langs, "+") {
		if !knownLanguages[elem] {
			return false, "'" + elem + "' is not a known Tesseract language or script"
		}
	}
	return true, ""
}
