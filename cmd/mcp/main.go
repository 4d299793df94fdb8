package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"neonflow/internal/calculator"
	"neonflow/internal/config"
	"neonflow/internal/history"
	"neonflow/internal/observability"
)

const historyURI = "calculator://history"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	var (
		configFlag = flag.String("config", config.PathFromEnv(), "path to the TOML, YAML or JSON config file")
		portFlag   = flag.Int("port", 0, "TCP port to listen on (0 for stdio)")
	)
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// zap's production logger writes to stderr, keeping stdout free for the
	// stdio transport.
	if err := observability.InitLogger(cfg.Logging.Level); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer observability.SyncLogger()
	logger := observability.Logger

	if err := calculator.InitMetrics(); err != nil {
		logger.Fatal("init metrics", zap.Error(err))
	}

	store, err := history.Open(cfg.History)
	if err != nil {
		logger.Fatal("open history store", zap.Error(err))
	}
	defer store.Close()

	session := calculator.NewSession(ctx, store, logger)
	mcpServer := newMCPServer(session)

	if *portFlag == 0 {
		if err := server.ServeStdio(mcpServer); err != nil {
			logger.Fatal("stdio server failed", zap.Error(err))
		}
		return
	}

	httpServer := server.NewStreamableHTTPServer(mcpServer)
	logger.Info("starting MCP HTTP server", zap.Int("port", *portFlag))
	if err := httpServer.Start(fmt.Sprintf(":%d", *portFlag)); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}
}

// newMCPServer registers every calculator tool and resource against session.
func newMCPServer(session *calculator.Session) *server.MCPServer {
	s := server.NewMCPServer(
		"neonflow-calculator",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	addPressKeyTool(s, session)
	addApplyIntentTool(s, session)
	addClearHistoryTool(s, session)
	addHistoryResource(s, session)

	return s
}

// addPressKeyTool exposes keyboard input.
func addPressKeyTool(s *server.MCPServer, session *calculator.Session) {
	tool := mcp.NewTool("press_key",
		mcp.WithDescription("Press one calculator key: 0-9, '.', '+', '-', '*', '/', 'Enter' or '=', 'Backspace', 'Escape'"),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Key name, e.g. '7', '*' or 'Enter'"),
		),
	)

	s.AddTool(tool, pressKeyHandler(session))
}

func pressKeyHandler(session *calculator.Session) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, ok := request.GetArguments()["key"].(string)
		if !ok {
			return mcp.NewToolResultError("key is required"), nil
		}

		in, ok := calculator.IntentForKey(key)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("key %q has no binding", key)), nil
		}

		return dispatch(ctx, session, in)
	}
}

// addApplyIntentTool exposes the full intent surface, including the
// history actions that have no key binding.
func addApplyIntentTool(s *server.MCPServer, session *calculator.Session) {
	tool := mcp.NewTool("apply_intent",
		mcp.WithDescription("Apply one calculator intent and return the resulting state"),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("One of digit, decimalPoint, operator, equals, clear, delete, toggleSign, percent, selectHistory, clearHistory"),
		),
		mcp.WithString("value",
			mcp.Description("Digit, operator character or history entry id, depending on type"),
		),
	)

	s.AddTool(tool, applyIntentHandler(session))
}

func applyIntentHandler(session *calculator.Session) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		typ, ok := args["type"].(string)
		if !ok {
			return mcp.NewToolResultError("type is required"), nil
		}
		value, _ := args["value"].(string)

		return dispatch(ctx, session, calculator.Intent{Type: calculator.IntentType(typ), Value: value})
	}
}

// addClearHistoryTool empties the history log without touching the
// current calculation.
func addClearHistoryTool(s *server.MCPServer, session *calculator.Session) {
	tool := mcp.NewTool("clear_history",
		mcp.WithDescription("Remove every entry from the calculation history"),
	)

	s.AddTool(tool, clearHistoryHandler(session))
}

func clearHistoryHandler(session *calculator.Session) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return dispatch(ctx, session, calculator.Intent{Type: calculator.IntentClearHistory})
	}
}

func dispatch(ctx context.Context, session *calculator.Session, in calculator.Intent) (*mcp.CallToolResult, error) {
	snap, _, err := session.Dispatch(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// addHistoryResource publishes the history log.
func addHistoryResource(s *server.MCPServer, session *calculator.Session) {
	resource := mcp.NewResource(historyURI,
		"Calculation History",
		mcp.WithResourceDescription("Completed calculations, newest first"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, historyResourceHandler(session))
}

func historyResourceHandler(session *calculator.Session) server.ResourceHandlerFunc {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.MarshalIndent(session.History(), "", "  ")
		if err != nil {
			return nil, err
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      historyURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
