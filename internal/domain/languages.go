package domain

// Language is one entry of the fixed translation language catalog.
type Language struct {
	Code        string `json:"code"`
	DisplayName string `json:"name"`
}

var languageCatalog = []Language{
	{Code: "en", DisplayName: "English"},
	{Code: "ru", DisplayName: "Russian"},
	{Code: "es", DisplayName: "Spanish"},
	{Code: "fr", DisplayName: "French"},
	{Code: "de", DisplayName: "German"},
	{Code: "it", DisplayName: "Italian"},
	{Code: "pt", DisplayName: "Portuguese"},
	{Code: "nl", DisplayName: "Dutch"},
	{Code: "pl", DisplayName: "Polish"},
	{Code: "zh", DisplayName: "Chinese"},
	{Code: "ja", DisplayName: "Japanese"},
	{Code: "ko", DisplayName: "Korean"},
	{Code: "ar", DisplayName: "Arabic"},
	{Code: "hi", DisplayName: "Hindi"},
	{Code: "tr", DisplayName: "Turkish"},
}

// Languages returns a copy of the supported language catalog.
func Languages() []Language {
	out := make([]Language, len(languageCatalog))
	copy(out, languageCatalog)
	return out
}

// LanguageByCode looks up a catalog entry by its code.
func LanguageByCode(code string) (Language, bool) {
	for _, lang := range languageCatalog {
		if lang.Code == code {
			return lang, true
		}
	}
	return Language{}, false
}
