package ui

import (
	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/analysis"
)

// FileStartMsg indicates a file has begun decoding.
type FileStartMsg struct {
	FileIndex int
	FileName  string
}

// ProgressMsg is one progress update for the active file.
type ProgressMsg struct {
	FileIndex int
	Phase     analysis.Phase
	Percent   int
	Label     string
}

// PartialMsg streams one fragment of the active file's result so the view
// can show measurements as they land.
type PartialMsg struct {
	FileIndex int
	Fragment  analysis.Fragment
}

// FileCompleteMsg indicates a file finished, successfully or not.
type FileCompleteMsg struct {
	FileIndex int
	Result    *analysis.AnalysisResult
	BpmKey    *analysis.BpmKeyResult
	Err       error
}

// AllCompleteMsg indicates the whole batch is done.
type AllCompleteMsg struct{}
