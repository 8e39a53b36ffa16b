package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"

	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/analysis"
	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/audio"
	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/batch"
	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/cli"
	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/engine"
	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/logging"
	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/mains"
	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/ui"
)

var (
	version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Version    bool     `short:"v" help:"Show version information"`
	Logs       bool     `help:"Save a detailed analysis report next to each input file"`
	NoUI       bool     `name:"no-ui" help:"Plain console output instead of the interactive interface"`
	TargetLUFS float64  `name:"target-lufs" default:"-14" help:"Integrated loudness target for interpretation"`
	TargetPeak float64  `name:"target-peak" default:"-1.0" help:"True peak ceiling for interpretation"`
	Files      []string `arg:"" name:"files" help:"Audio files to analyze" type:"existingfile" optional:""`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("nextlight-audio-analyzer"),
		kong.Description("Mastering quality analyzer for finished mixes"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	// Validate input
	if len(cliArgs.Files) == 0 {
		cli.PrintError("No input files specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	// Open debug log file
	debugLog, _ := os.Create("nextlight-analyzer-debug.log")
	defer debugLog.Close()
	log := func(format string, args ...interface{}) {
		if debugLog != nil {
			fmt.Fprintf(debugLog, format+"\n", args...)
		}
	}

	// Wire the analysis stack: DSP engine behind the orchestrator, decode
	// registry and batch coordinator in front of it.
	orch := analysis.NewOrchestrator(engine.New(), mains.Frequency(), log)
	engineString, err := orch.Init(context.Background())
	if err != nil {
		cli.PrintError(fmt.Sprintf("Engine initialization failed: %v", err))
		os.Exit(1)
	}
	log("[MAIN] Engine ready: %s", engineString)

	runner := &analysisRunner{orch: orch}
	coord := batch.NewCoordinator(audio.NewRegistry(), runner)

	indexByID := make(map[string]int)
	for _, path := range cliArgs.Files {
		item := coord.Add(path)
		if item == nil {
			cli.PrintError(fmt.Sprintf("Queue is full (%d files max), skipping %s", batch.MaxItems, path))
			continue
		}
		indexByID[item.ID] = len(indexByID)
	}

	targets := logging.Targets{
		IntegratedLUFS: cliArgs.TargetLUFS,
		TruePeakDBTP:   cliArgs.TargetPeak,
	}

	if cliArgs.NoUI {
		runPlain(coord, runner, indexByID, cliArgs, targets, engineString, log)
		return
	}

	// Create the Bubbletea UI model
	model := ui.NewModel(cliArgs.Files)

	// Start the TUI
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Start processing in background
	go func() {
		startTimes := make(map[string]time.Time)

		coord.Start(batch.Events{
			ItemStarted: func(item *batch.Item) {
				i := indexByID[item.ID]
				startTimes[item.ID] = time.Now()
				log("[MAIN] Sending FileStartMsg for file %d: %s", i, item.Path)
				p.Send(ui.FileStartMsg{
					FileIndex: i,
					FileName:  item.Path,
				})
			},
			ItemProgress: func(item *batch.Item, prog analysis.Progress) {
				p.Send(ui.ProgressMsg{
					FileIndex: indexByID[item.ID],
					Phase:     prog.Phase,
					Percent:   prog.Percent,
					Label:     prog.Label,
				})
			},
			ItemPartial: func(item *batch.Item, f analysis.Fragment) {
				p.Send(ui.PartialMsg{
					FileIndex: indexByID[item.ID],
					Fragment:  f,
				})
			},
			ItemFinished: func(item *batch.Item) {
				i := indexByID[item.ID]
				if item.Status == batch.StatusError {
					log("[MAIN] File %d failed: %s", i, item.Err)
					p.Send(ui.FileCompleteMsg{
						FileIndex: i,
						Err:       fmt.Errorf("%s", item.Err),
					})
					return
				}

				bpmKey := runner.lastBpmKey

				// Generate analysis report if --logs flag is set
				if cliArgs.Logs {
					reportData := logging.ReportData{
						InputPath:    item.Path,
						StartTime:    startTimes[item.ID],
						EndTime:      time.Now(),
						Result:       item.Result,
						BpmKey:       bpmKey,
						Targets:      targets,
						EngineString: engineString,
					}
					if err := logging.GenerateReport(reportData); err != nil {
						log("[MAIN] Failed to generate log file: %v", err)
					}
				}

				log("[MAIN] Sending FileCompleteMsg for file %d", i)
				p.Send(ui.FileCompleteMsg{
					FileIndex: i,
					Result:    item.Result,
					BpmKey:    bpmKey,
				})
			},
		})

		// Signal all complete
		log("[MAIN] Sending AllCompleteMsg")
		p.Send(ui.AllCompleteMsg{})
	}()

	// Run the program
	if _, err := p.Run(); err != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
		os.Exit(1)
	}
}

// runPlain drives the batch without the TUI, one progress bar per file.
func runPlain(coord *batch.Coordinator, runner *analysisRunner, indexByID map[string]int, cliArgs *CLI, targets logging.Targets, engineString string, log func(string, ...interface{})) {
	var bar *progressbar.ProgressBar
	startTimes := make(map[string]time.Time)
	failed := 0

	coord.Start(batch.Events{
		ItemStarted: func(item *batch.Item) {
			startTimes[item.ID] = time.Now()
			bar = progressbar.NewOptions(100,
				progressbar.OptionSetDescription(item.Path),
				progressbar.OptionSetWidth(30),
				progressbar.OptionClearOnFinish(),
			)
		},
		ItemProgress: func(item *batch.Item, prog analysis.Progress) {
			if bar != nil {
				bar.Describe(fmt.Sprintf("%s: %s", item.Path, prog.Label))
				bar.Set(prog.Percent)
			}
		},
		ItemFinished: func(item *batch.Item) {
			if bar != nil {
				bar.Finish()
				bar = nil
			}
			if item.Status == batch.StatusError {
				failed++
				cli.PrintError(fmt.Sprintf("%s: %s", item.Path, item.Err))
				return
			}
			logging.DisplayResult(os.Stdout, item.Result, runner.lastBpmKey, targets)
			if cliArgs.Logs {
				reportData := logging.ReportData{
					InputPath:    item.Path,
					StartTime:    startTimes[item.ID],
					EndTime:      time.Now(),
					Result:       item.Result,
					BpmKey:       runner.lastBpmKey,
					Targets:      targets,
					EngineString: engineString,
				}
				if err := logging.GenerateReport(reportData); err != nil {
					log("[MAIN] Failed to generate log file: %v", err)
				}
			}
		},
	})

	if failed > 0 {
		os.Exit(1)
	}
}

// analysisRunner adapts the orchestrator to the batch coordinator's
// Analyzer interface, tacking the tempo/key pass onto each measurement
// pass. The coordinator runs items one at a time on a single goroutine, so
// lastBpmKey always belongs to the item whose ItemFinished fires next.
type analysisRunner struct {
	orch       *analysis.Orchestrator
	lastBpmKey *analysis.BpmKeyResult
}

func (r *analysisRunner) Analyze(buf *audio.Buffer, onProgress func(analysis.Progress), onPartial func(analysis.Fragment)) (analysis.AnalysisResult, error) {
	r.lastBpmKey = nil

	// The orchestrator takes ownership of the buffer it is handed, so the
	// tempo/key pass gets its own copy up front.
	tonal := buf.Clone()

	result, err := r.orch.Analyze(context.Background(), buf, onProgress, onPartial)
	if err != nil {
		return analysis.AnalysisResult{}, err
	}

	bpmKey, err := r.orch.AnalyzeBpmKey(context.Background(), tonal, onProgress)
	if err != nil {
		// Tempo and key are best-effort; the measurement pass already
		// succeeded, so keep its result.
		return result, nil
	}
	r.lastBpmKey = &bpmKey
	return result, nil
}
