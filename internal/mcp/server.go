// Package mcp exposes the autofill engine over the Model Context Protocol:
// session lifecycle, page analysis, fill runs, and the fact-based diagnosis
// tools, served over stdio or SSE.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"applynerd-mcp-server/internal/autofill"
	"applynerd-mcp-server/internal/browser"
	"applynerd-mcp-server/internal/config"
	"applynerd-mcp-server/internal/facts"
	"applynerd-mcp-server/internal/profile"
	"applynerd-mcp-server/internal/trace"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

// Server wires the MCP runtime, the session registry, the autofill service,
// and the fact engine.
type Server struct {
	cfg       config.Config
	registry  *browser.Registry
	service   *autofill.Service
	engine    *facts.Engine
	profiles  *profile.FileStore
	recorder  *trace.Recorder
	log       zerolog.Logger
	tools     map[string]Tool
	mcpServer *mcpserver.MCPServer
}

// Tool describes the contract for MCP tool implementations.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// Deps carries everything the server needs; keeps the constructor signature
// stable as components are added.
type Deps struct {
	Registry *browser.Registry
	Service  *autofill.Service
	Engine   *facts.Engine
	Profiles *profile.FileStore
	Recorder *trace.Recorder
	Log      zerolog.Logger
}

// NewServer constructs the ApplyNERD MCP server and registers all tools.
func NewServer(cfg config.Config, deps Deps) (*Server, error) {
	mcpSrv := mcpserver.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
		mcpserver.WithRecovery(),
	)

	server := &Server{
		cfg:       cfg,
		registry:  deps.Registry,
		service:   deps.Service,
		engine:    deps.Engine,
		profiles:  deps.Profiles,
		recorder:  deps.Recorder,
		log:       deps.Log,
		tools:     make(map[string]Tool),
		mcpServer: mcpSrv,
	}

	server.registerAllTools()
	return server, nil
}

// Start launches the stdio server (Claude/Gemini CLI default).
func (s *Server) Start(ctx context.Context) error {
	stdio := mcpserver.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// StartSSE hosts the server over HTTP using SSE endpoints with graceful shutdown.
func (s *Server) StartSSE(ctx context.Context, port int) error {
	sseServer := mcpserver.NewSSEServer(s.mcpServer, mcpserver.WithBaseURL("http://localhost:"+strconv.Itoa(port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(port),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("SSE server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// ExecuteTool executes a tool directly (used by tests).
func (s *Server) ExecuteTool(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	tool, exists := s.tools[name]
	if !exists {
		return nil, fmt.Errorf("tool not found: %s", name)
	}
	return tool.Execute(ctx, args)
}

func (s *Server) registerAllTools() {
	// Application session lifecycle
	s.registerTool(&GoTool{registry: s.registry})
	s.registerTool(&StopSessionTool{registry: s.registry})
	s.registerTool(&ListSessionsTool{registry: s.registry})
	s.registerTool(&ScreenshotTool{registry: s.registry})
	s.registerTool(&StreamScreenshotsTool{registry: s.registry})
	s.registerTool(&MarkSubmittedTool{registry: s.registry, service: s.service})

	// Autofill pipeline
	s.registerTool(&AnalyzePageTool{registry: s.registry, service: s.service})
	s.registerTool(&AutofillTool{registry: s.registry, service: s.service, recorder: s.recorder, cfg: s.cfg})
	s.registerTool(&ListProfilesTool{profiles: s.profiles})

	// Audit trail
	s.registerTool(&QueryFactsTool{engine: s.engine})
	s.registerTool(&DiagnoseRunTool{engine: s.engine})
}

func (s *Server) registerTool(tool Tool) {
	s.tools[tool.Name()] = tool

	schema, err := json.Marshal(tool.InputSchema())
	if err != nil {
		schema = json.RawMessage(`{"type":"object"}`)
	}

	mcpTool := mcp.NewToolWithRawSchema(tool.Name(), tool.Description(), schema)
	s.mcpServer.AddTool(mcpTool, s.wrapTool(tool))
}

func (s *Server) wrapTool(tool Tool) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]interface{}{}
		}

		result, err := tool.Execute(ctx, args)
		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{mcp.NewTextContent(fmt.Sprintf("tool %s failed: %v", tool.Name(), err))},
				IsError: true,
			}, nil
		}

		payload := marshalToolPayload(tool.Name(), result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.NewTextContent(string(payload))},
			IsError: false,
		}, nil
	}
}

func marshalToolPayload(toolName string, result interface{}) []byte {
	payload, marshalErr := json.Marshal(result)
	if marshalErr == nil {
		return payload
	}

	fallback := map[string]interface{}{
		"success": false,
		"error":   fmt.Sprintf("tool %s returned non-serializable payload: %v", toolName, marshalErr),
	}
	payload, fallbackErr := json.Marshal(fallback)
	if fallbackErr == nil {
		return payload
	}

	return []byte(fmt.Sprintf(`{"success":false,"error":"tool %s failed to encode payload"}`, toolName))
}
