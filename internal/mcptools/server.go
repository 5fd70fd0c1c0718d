package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewConnectMCPServer creates an MCP server with the connection tools registered.
func NewConnectMCPServer(svc *ConnectService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "archconnect",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_element_types",
		Description: "List the ontology's element types with their layers, the relationship types, and the named viewpoints. Optionally filter element types by layer.",
	}, svc.ListElementTypes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_connection",
		Description: "Compute every legal way to connect a source element type to a target element type: ranked direct relationships, ranked two-hop indirect paths, and a recommendation (auto-create, choose-direct, choose-any, no-path).",
	}, svc.ResolveConnection)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_for_source",
		Description: "Resolve one model element against many candidate targets in a single batch. Defaults to every other element in the model.",
	}, svc.ResolveForSource)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_element",
		Description: "Add an element of the given type to the model. Returns the new element with its id.",
	}, svc.CreateElement)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "connect_elements",
		Description: "Connect two model elements. Unambiguous connections are created immediately, inserting derived intermediate elements for indirect paths. Ambiguous ones return the options; call again with directIndex or indirectIndex to pick one.",
	}, svc.ConnectElements)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_model",
		Description: "Export the model graph (elements, relationships, stats) and the connections created in this server session as JSON.",
	}, svc.ExportModel)

	return server
}

// RunMCPServer starts an HTTP server exposing the connection MCP tools.
func RunMCPServer(ctx context.Context, svc *ConnectService, addr string) error {
	server := NewConnectMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// RunMCPServerStdio runs the MCP server on stdio transport, blocking until
// stdin is closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, svc *ConnectService) error {
	return NewConnectMCPServer(svc).Run(ctx, &mcp.StdioTransport{})
}
