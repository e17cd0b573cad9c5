package phonetic

// Romanian rules. Digraphs come first: "ce" must be rewritten before "c" and
// "e" are handled one by one.
var romanianIPA = []Rule{
	{"ce", "t͡ʃe"}, {"ci", "t͡ʃi"}, {"ge", "d͡ʒe"}, {"gi", "d͡ʒi"},
	{"ch", "k"}, {"gh", "g"},
	{"ă", "ə"}, {"â", "ɨ"}, {"î", "ɨ"},
	{"ș", "ʃ"}, {"ţ", "t͡s"}, {"ț", "t͡s"},
}

var romanianCyrillic = []Rule{
	{"ce", "че"}, {"ci", "чи"}, {"ge", "дже"}, {"gi", "джи"},
	{"ch", "к"}, {"gh", "г"},
	{"ă", "э"}, {"â", "ы"}, {"î", "ы"},
	{"ș", "ш"}, {"ţ", "ц"}, {"ț", "ц"},
	{"a", "а"}, {"e", "е"}, {"i", "и"}, {"o", "о"}, {"u", "у"},
	{"b", "б"}, {"c", "к"}, {"d", "д"}, {"f", "ф"}, {"g", "г"},
	{"h", "х"}, {"j", "ж"}, {"k", "к"}, {"l", "л"}, {"m", "м"},
	{"n", "н"}, {"p", "п"}, {"q", "к"}, {"r", "р"}, {"s", "с"},
	{"t", "т"}, {"v", "в"}, {"w", "в"}, {"x", "кс"}, {"y", "и"}, {"z", "з"},
}

func builtinProfiles() []*Profile {
	return []*Profile{
		{
			Lang:          "ro",
			Normalization: map[string]string{"vinere": "vineri"},
			IPA:           Ruleset{Name: "ro-ipa", Version: 1, Rules: romanianIPA},
			Approx:        Ruleset{Name: "ro-cyrillic", Version: 1, Rules: romanianCyrillic},
		},
		{
			Lang:   "en",
			IPA:    Ruleset{Name: "en-ipa"},
			Approx: Ruleset{Name: "en-approx"},
		},
	}
}
