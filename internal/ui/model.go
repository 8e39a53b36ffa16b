// Package ui provides the Bubbletea terminal interface for batch analysis.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/analysis"
)

// FileStatus mirrors the batch item state machine for display.
type FileStatus int

const (
	StatusQueued FileStatus = iota
	StatusDecoding
	StatusAnalyzing
	StatusComplete
	StatusError
)

// FileProgress tracks one file's display state.
type FileProgress struct {
	Path    string
	Status  FileStatus
	Phase   analysis.Phase
	Percent int
	Label   string

	StartTime   time.Time
	ElapsedTime time.Duration

	// Result accumulates partial fragments as they stream in and holds the
	// final measurements once the file completes.
	Result analysis.AnalysisResult
	BpmKey *analysis.BpmKeyResult

	Err error
}

// Model is the Bubbletea model for the batch view.
type Model struct {
	Files          []FileProgress
	CurrentIndex   int
	TotalFiles     int
	CompletedFiles int
	FailedFiles    int

	StartTime time.Time
	Done      bool

	Width  int
	Height int
}

// NewModel builds the initial model for the given input files.
func NewModel(inputFiles []string) Model {
	files := make([]FileProgress, len(inputFiles))
	for i, path := range inputFiles {
		files[i] = FileProgress{Path: path, Status: StatusQueued}
	}
	return Model{
		Files:        files,
		CurrentIndex: -1,
		TotalFiles:   len(inputFiles),
		StartTime:    time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case FileStartMsg:
		m.CurrentIndex = msg.FileIndex
		if m.valid(msg.FileIndex) {
			m.Files[msg.FileIndex].Status = StatusDecoding
			m.Files[msg.FileIndex].StartTime = time.Now()
		}

	case ProgressMsg:
		if m.valid(msg.FileIndex) {
			fp := &m.Files[msg.FileIndex]
			fp.Status = StatusAnalyzing
			fp.Phase = msg.Phase
			fp.Percent = msg.Percent
			fp.Label = msg.Label
			fp.ElapsedTime = time.Since(fp.StartTime)
		}

	case PartialMsg:
		if m.valid(msg.FileIndex) {
			fp := &m.Files[msg.FileIndex]
			fp.Result = fp.Result.Merge(msg.Fragment)
		}

	case FileCompleteMsg:
		if m.valid(msg.FileIndex) {
			fp := &m.Files[msg.FileIndex]
			if msg.Err != nil {
				fp.Status = StatusError
				fp.Err = msg.Err
				m.FailedFiles++
			} else {
				fp.Status = StatusComplete
				if msg.Result != nil {
					fp.Result = *msg.Result
				}
				fp.BpmKey = msg.BpmKey
				m.CompletedFiles++
			}
		}

	case AllCompleteMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.Done {
		return renderCompletionSummary(m)
	}
	return renderProcessingView(m)
}

func (m Model) valid(i int) bool {
	return i >= 0 && i < len(m.Files)
}
