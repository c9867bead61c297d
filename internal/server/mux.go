// Package server provides HTTP server construction for the MCP
// streamable transport.
package server

import (
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewMux builds the HTTP mux exposing the MCP server at /mcp over the
// streamable HTTP transport.
func NewMux(mcpServer *mcp.Server) *http.ServeMux {
	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)

	return mux
}

// NewServer wraps the MCP mux in an http.Server with explicit timeouts.
// The write timeout bounds individual streamed responses, not the
// connection lifetime.
func NewServer(addr string, mcpServer *mcp.Server) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      NewMux(mcpServer),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
