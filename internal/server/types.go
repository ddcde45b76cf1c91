package server

import "anki-mcp/internal/schema"

// Tool is the discovery view of one registered tool.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *schema.Descriptor `json:"inputSchema"`
}

// CallRequest is the body of POST /mcp/call.
type CallRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ContentBlock is one piece of tool output.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallResult wraps a tool's JSON-serializable result for the caller.
type CallResult struct {
	Content []ContentBlock `json:"content"`
}

// Error type tags surfaced to callers. Every failure is terminal for the
// invocation; nothing is retried and no partial result is returned.
const (
	errUnknownTool      = "unknown_tool"
	errInvalidArguments = "invalid_arguments"
	errCollaborator     = "collaborator_error"
	errCollaboratorDown = "collaborator_unreachable"
	errMalformedRequest = "malformed_request"
	errInternal         = "internal_error"
)

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}
