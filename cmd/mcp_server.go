package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/autodoc-cli/internal/model"
	"github.com/mj1618/autodoc-cli/internal/orchestrator"
	"github.com/mj1618/autodoc-cli/internal/output"
	"github.com/mj1618/autodoc-cli/internal/platform"
	"github.com/mj1618/autodoc-cli/internal/replay"
	"github.com/mj1618/autodoc-cli/internal/version"
)

// mcpServer wraps the MCP server with the platform provider. Input devices
// are a single shared physical resource, so tool calls that synthesize
// input are serialized.
type mcpServer struct {
	provider   *platform.Provider
	providerMu sync.Mutex
	mcp        *mcpserver.MCPServer
}

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Transport string
	Port      int
}

// newMCPServer creates and configures an MCP server with all autodoc tools.
func newMCPServer() (*mcpServer, error) {
	provider, err := platform.NewProvider()
	if err != nil {
		return nil, err
	}

	s := &mcpServer{provider: provider}
	s.mcp = mcpserver.NewMCPServer(
		"autodoc-cli",
		version.Version,
	)
	s.registerTools()
	return s, nil
}

// serve starts the MCP server with the configured transport.
func (s *mcpServer) serve(cfg MCPConfig) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *mcpServer) registerTools() {
	// sequences
	s.mcp.AddTool(
		mcp.NewTool("sequences",
			mcp.WithDescription("List recorded action sequences available for playback"),
		),
		s.handleSequences,
	)

	// play
	s.mcp.AddTool(
		mcp.NewTool("play",
			mcp.WithDescription("Replay a recorded sequence, capturing a frame after each action. Optionally analyze the frames into documentation."),
			mcp.WithString("sequence", mcp.Description("Sequence name, id, or id prefix"), mcp.Required()),
			mcp.WithNumber("speed", mcp.Description("Speed multiplier for recorded delays (default: 1.0)")),
			mcp.WithString("bbox", mcp.Description("Capture region as x,y,w,h (default: full screen)")),
			mcp.WithNumber("pid", mcp.Description("Capture the frontmost window of this PID")),
			mcp.WithBoolean("analyze", mcp.Description("Analyze captured frames and write documentation")),
			mcp.WithString("name", mcp.Description("Document title (default: sequence name)")),
		),
		s.handlePlay,
	)

	// autocapture
	s.mcp.AddTool(
		mcp.NewTool("autocapture",
			mcp.WithDescription("Capture a series of screens, performing one input action between captures, then write step-by-step documentation"),
			mcp.WithString("name", mcp.Description("Document title and output directory name"), mcp.Required()),
			mcp.WithNumber("count", mcp.Description("Number of captures to take"), mcp.Required()),
			mcp.WithString("key", mcp.Description("Key combo to press between captures (e.g. 'right', 'cmd+right')")),
			mcp.WithString("click", mcp.Description("Coordinates to click between captures, as 'x,y'")),
			mcp.WithNumber("interval", mcp.Description("Seconds to wait between captures (default: 1)")),
			mcp.WithString("bbox", mcp.Description("Capture region as x,y,w,h (default: full screen)")),
			mcp.WithNumber("pid", mcp.Description("Capture the frontmost window of this PID")),
			mcp.WithBoolean("allow-gaps", mcp.Description("Save the document even when some steps failed analysis")),
		),
		s.handleAutocapture,
	)
}

func (s *mcpServer) handleSequences(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := openStore()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	all, err := st.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	summaries := make([]output.SequenceSummary, 0, len(all))
	for _, seq := range all {
		summaries = append(summaries, output.SequenceSummary{
			Name:     seq.Name,
			Actions:  seq.ActionCount(),
			Duration: seq.TotalDuration().Seconds(),
			Created:  seq.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	b, _ := yaml.Marshal(summaries)
	return mcp.NewToolResultText(string(b)), nil
}

func (s *mcpServer) handlePlay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	ref := StringParam(params, "sequence", "")
	if ref == "" {
		return mcp.NewToolResultError("sequence is required"), nil
	}

	st, err := openStore()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	seq, err := st.Resolve(ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	region, err := mcpRegion(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg := replay.DefaultConfig()
	if speed := FloatParam(params, "speed", 0); speed > 0 {
		cfg.SpeedMultiplier = speed
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	engine := replay.New(s.provider.Inputter, s.provider.Frames, s.provider.Permissions, cfg)
	started := time.Now()
	session, err := engine.Play(ctx, seq, region)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := output.PlayResult{
		Sequence: seq.Name,
		Actions:  len(seq.Actions),
		Frames:   len(session.Captures),
		Elapsed:  time.Since(started).Seconds(),
	}
	if BoolParam(params, "analyze", false) {
		name := StringParam(params, "name", seq.Name)
		dir, _, err := analyzeCaptures(ctx, session.Captures, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result.Output = dir
	}
	b, _ := yaml.Marshal(result)
	return mcp.NewToolResultText(string(b)), nil
}

func (s *mcpServer) handleAutocapture(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	region, err := mcpRegion(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	next, err := mcpNextAction(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	job := model.CaptureJob{
		Target:       region,
		Next:         next,
		CaptureCount: IntParam(params, "count", 0),
		Interval:     time.Duration(FloatParam(params, "interval", 1) * float64(time.Second)),
		OutputName:   StringParam(params, "name", ""),
	}
	if err := job.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	vision, err := visionFromSettings()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	orc := orchestrator.New(s.provider.Frames, s.provider.Inputter, vision, orchestrator.Config{
		MaxConcurrent: settings.MaxConcurrent,
		Prompt:        settings.Prompt,
		Scale:         settings.Scale,
		OutputRoot:    settings.OutputRoot,
	})
	if err := orc.Run(ctx, job); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if orc.State().Phase == orchestrator.PhasePartiallyCompleted {
		if err := orc.RetryFailed(ctx); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if orc.State().Phase == orchestrator.PhasePartiallyCompleted {
		if !BoolParam(params, "allow-gaps", false) {
			return mcp.NewToolResultError(fmt.Sprintf("%d steps failed analysis; pass allow-gaps to save anyway", orc.State().Failed)), nil
		}
		if err := orc.SaveWithGaps(ctx); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	final := orc.State()
	if final.Phase != orchestrator.PhaseCompleted {
		return mcp.NewToolResultError(fmt.Sprintf("capture did not complete: %s", final.Message)), nil
	}
	b, _ := yaml.Marshal(output.DocumentResult{
		Name:      job.OutputName,
		Directory: final.Location,
		Frames:    job.CaptureCount,
		Analyzed:  final.Succeeded,
	})
	return mcp.NewToolResultText(string(b)), nil
}

// mcpRegion resolves the shared bbox/pid arguments of MCP tools.
func mcpRegion(params map[string]interface{}) (model.Region, error) {
	bbox := StringParam(params, "bbox", "")
	pid := IntParam(params, "pid", 0)
	if bbox != "" && pid != 0 {
		return model.Region{}, fmt.Errorf("bbox and pid are mutually exclusive")
	}
	if bbox != "" {
		return platform.ParseBBox(bbox)
	}
	if pid != 0 {
		return model.Window(pid), nil
	}
	return model.FullScreen(), nil
}

// mcpNextAction resolves the key/click arguments of the autocapture tool.
func mcpNextAction(params map[string]interface{}) (model.NextAction, error) {
	keySpec := StringParam(params, "key", "")
	clickSpec := StringParam(params, "click", "")
	switch {
	case keySpec != "" && clickSpec != "":
		return model.NextAction{}, fmt.Errorf("key and click are mutually exclusive")
	case keySpec != "":
		code, mods, err := ParseKeySpec(keySpec)
		if err != nil {
			return model.NextAction{}, err
		}
		return model.NextAction{Kind: model.NextKeyPress, KeyCode: code, Modifiers: mods}, nil
	case clickSpec != "":
		x, y, err := ParseClickSpec(clickSpec)
		if err != nil {
			return model.NextAction{}, err
		}
		return model.NextAction{Kind: model.NextClick, X: x, Y: y, Button: model.MouseLeft}, nil
	default:
		return model.NextAction{}, fmt.Errorf("one of key or click is required")
	}
}
