package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sakthi87/ragllmmvp-sub001/config"
)

const Version = "1.0.0"

// NewServer builds an MCP server exposing the assistant as tools.
func NewServer(ctx context.Context, serverName string, cfg *config.Config) (*server.MCPServer, error) {
	a, err := New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create assistant failed, err: %w", err)
	}
	return NewServerWith(serverName, a), nil
}

// NewServerWith registers the tool surface on an existing assistant.
func NewServerWith(serverName string, a *Assistant) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		Version,
		server.WithInstructions("Answers operational questions about the data platform: table schemas, lineage, error summaries, metrics and root cause analysis"),
	)

	s.AddTool(
		mcp.NewToolWithRawSchema("ask", "Answer a natural language question about platform tables using retrieved metadata, lineage, log and metric documents", GetAskSchema()),
		HandleAsk(a),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("search-documents", "Retrieve the most relevant platform documents for a question without generating an answer", GetSearchSchema()),
		HandleSearch(a),
	)
	s.AddTool(
		mcp.NewToolWithRawSchema("analyze-root-cause", "Run rule-based root cause analysis over the documents retrieved for a question", GetAnalyzeSchema()),
		HandleAnalyze(a),
	)

	return s
}

func GetAskSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"question": {"type": "string", "description": "The question to answer"},
			"keyspace": {"type": "string", "description": "Keyspace to scope the question to"},
			"table": {"type": "string", "description": "Table to scope the question to"},
			"cluster": {"type": "string", "description": "Cluster name filter"},
			"top_k": {"type": "integer", "description": "Documents to retrieve per source type"},
			"days_back": {"type": "integer", "description": "Look-back window in days"},
			"max_tokens": {"type": "integer", "description": "Generation token budget"},
			"temperature": {"type": "number", "description": "Generation temperature"}
		},
		"required": ["question"]
	}`)
}

func GetSearchSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"question": {"type": "string", "description": "The question to retrieve documents for"},
			"keyspace": {"type": "string", "description": "Keyspace to scope the search to"},
			"table": {"type": "string", "description": "Table to scope the search to"},
			"cluster": {"type": "string", "description": "Cluster name filter"},
			"top_k": {"type": "integer", "description": "Documents to retrieve per source type"},
			"days_back": {"type": "integer", "description": "Look-back window in days"}
		},
		"required": ["question"]
	}`)
}

func GetAnalyzeSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"question": {"type": "string", "description": "The problem statement to analyze"},
			"keyspace": {"type": "string", "description": "Keyspace to scope the analysis to"},
			"table": {"type": "string", "description": "Table to scope the analysis to"},
			"days_back": {"type": "integer", "description": "Look-back window in days"}
		},
		"required": ["question"]
	}`)
}

func HandleAsk(a *Assistant) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := askRequestFromArgs(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		answer, err := a.Ask(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
		}
		return mcp.NewToolResultText(answer), nil
	}
}

func HandleSearch(a *Assistant) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := askRequestFromArgs(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		docs, err := a.SearchDocuments(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal results failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func HandleAnalyze(a *Assistant) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := askRequestFromArgs(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := a.Analyze(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		return mcp.NewToolResultText(result.Format()), nil
	}
}

func askRequestFromArgs(args map[string]any) (AskRequest, error) {
	question, ok := args["question"].(string)
	if !ok || question == "" {
		return AskRequest{}, fmt.Errorf("question is required")
	}
	req := AskRequest{Question: question}
	if s, ok := args["keyspace"].(string); ok {
		req.Keyspace = s
	}
	if s, ok := args["table"].(string); ok {
		req.Table = s
	}
	if s, ok := args["cluster"].(string); ok {
		req.Cluster = s
	}
	if v, ok := args["top_k"].(float64); ok {
		req.TopK = int(v)
	}
	if v, ok := args["days_back"].(float64); ok {
		req.DaysBack = int(v)
	}
	if v, ok := args["max_tokens"].(float64); ok {
		req.MaxTokens = int(v)
	}
	if v, ok := args["temperature"].(float64); ok {
		req.Temperature = v
	}
	return req, nil
}
