package gateway

// TranslateRequest is the body of POST /translate.
type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	Model      string `json:"model"`
}

// TranslateResponse is the success body of POST /translate.
type TranslateResponse struct {
	TranslatedText *string `json:"translated_text"`
}

// SpeechRequest is the body of POST /tts.
type SpeechRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// SummarizeRequest is the body of POST /summarize.
type SummarizeRequest struct {
	Text  string `json:"text"`
	Lang  string `json:"lang"`
	Model string `json:"model"`
}

// SummarizeResponse is the body of POST /summarize.
type SummarizeResponse struct {
	Summary *string `json:"summary"`
	Error   string  `json:"error,omitempty"`
}

// URLRequest is the body of POST /scrape-url and POST /youtube-transcript.
type URLRequest struct {
	URL string `json:"url"`
}

// ContentResponse is the body of POST /scrape-url and POST /youtube-transcript.
type ContentResponse struct {
	Content *string `json:"content"`
	Error   string  `json:"error,omitempty"`
}

// DetectRequest is the body of POST /detect-language.
type DetectRequest struct {
	Text string `json:"text"`
}

// DetectResponse is the body of POST /detect-language.
type DetectResponse struct {
	DetectedLanguage *string `json:"detected_language"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// errorBody is the structured error payload returned by the backend.
type errorBody struct {
	Error string `json:"error"`
}

// TagsResponse represents the response from the registry /api/tags endpoint.
type TagsResponse struct {
	Models *[]TagModel `json:"models"`
}

// TagModel represents a single model in the tags response.
type TagModel struct {
	Name       string `json:"name"`
	ModifiedAt string `json:"modified_at"`
	Size       int64  `json:"size"`
	Digest     string `json:"digest"`
}
