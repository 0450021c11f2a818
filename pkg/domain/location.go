package domain

// Location represents a position in source code.
// Lines are 1-based, columns and byte offsets 0-based; EndByte is exclusive.
type Location struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	StartCol  int    `json:"startCol,omitempty"`
	EndCol    int    `json:"endCol,omitempty"`
	StartByte int    `json:"startByte"`
	EndByte   int    `json:"endByte"`
}
