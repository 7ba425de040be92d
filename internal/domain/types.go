package domain

import "strings"

// SlotID names one of the two text buffers.
type SlotID string

const (
	SlotSource SlotID = "source"
	SlotTarget SlotID = "target"
)

// Valid reports whether id names a known slot.
func (id SlotID) Valid() bool {
	return id == SlotSource || id == SlotTarget
}

// Other returns the opposite slot.
func (id SlotID) Other() SlotID {
	if id == SlotSource {
		return SlotTarget
	}
	return SlotSource
}

// ViewMode selects whether a slot renders its raw text or its summary overlay.
type ViewMode string

const (
	ViewRaw     ViewMode = "raw"
	ViewSummary ViewMode = "summary"
)

// OperationKind classifies backend operations tracked per slot.
type OperationKind string

const (
	OpTranslate OperationKind = "translate"
	OpSummarize OperationKind = "summarize"
	OpSpeak     OperationKind = "speak"
	OpIngest    OperationKind = "ingest"
	OpDetect    OperationKind = "detect"
	OpDiscover  OperationKind = "discover"
)

// Model describes one selectable inference model from the local registry.
type Model struct {
	Name        string `json:"name"`
	SizeBytes   int64  `json:"size"`
	ContentHash string `json:"digest"`
}

// ErrorInfo is the single user-visible failure retained by a session.
type ErrorInfo struct {
	Operation OperationKind `json:"operation"`
	Message   string        `json:"message"`
}

// SlotState is the rendered state of one slot.
type SlotState struct {
	Text     string          `json:"text"`
	Language Language        `json:"language"`
	Summary  *string         `json:"summary,omitempty"`
	ViewMode ViewMode        `json:"viewMode"`
	Busy     []OperationKind `json:"busy"`
}

// ActiveText returns the text of whichever view is currently shown.
func (s SlotState) ActiveText() string {
	if s.ViewMode == ViewSummary && s.Summary != nil {
		return *s.Summary
	}
	return s.Text
}

// IsBusy reports whether kind is outstanding for the slot.
func (s SlotState) IsBusy(kind OperationKind) bool {
	for _, k := range s.Busy {
		if k == kind {
			return true
		}
	}
	return false
}

// Snapshot is an immutable copy of the full session state.
type Snapshot struct {
	SessionID     string     `json:"sessionId"`
	Version       int64      `json:"version"`
	Source        SlotState  `json:"source"`
	Target        SlotState  `json:"target"`
	Models        []Model    `json:"models"`
	ModelsLoaded  bool       `json:"modelsLoaded"`
	ModelsLoading bool       `json:"modelsLoading"`
	SelectedModel string     `json:"selectedModel"`
	LastError     *ErrorInfo `json:"lastError,omitempty"`
	ThemeEnabled  bool       `json:"themeEnabled"`
	Copied        bool       `json:"copied"`
}

// Slot returns the state of the named slot.
func (s Snapshot) Slot(id SlotID) SlotState {
	if id == SlotTarget {
		return s.Target
	}
	return s.Source
}

// IsBlank reports whether text has no non-whitespace characters.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
