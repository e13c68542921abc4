package models

// Finding is one candidate result produced by an extraction collaborator.
// The engine only compares Name as text; line and file are carried through
// to the verdict for display.
type Finding struct {
	Name       string `json:"name"`
	LineNumber int    `json:"line_number,omitempty"`
	FilePath   string `json:"file_path,omitempty"`
}
