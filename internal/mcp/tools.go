package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/promptflow/internal/tools"
)

// generateWorkflowTool defines the generate_workflow MCP tool.
var generateWorkflowTool = mcp.NewTool("generate_workflow",
	mcp.WithDescription("Generate workflow blocks from a natural-language description and add them to the current workflow, chained after the Start block."),
	mcp.WithString("prompt",
		mcp.Required(),
		mcp.Description("Description of the workflow to build"),
	),
)

// getWorkflowTool defines the get_workflow MCP tool.
var getWorkflowTool = mcp.NewTool("get_workflow",
	mcp.WithDescription("Get the current workflow graph as JSON or as a Mermaid diagram."),
	mcp.WithString("format",
		mcp.Description("Output format"),
		mcp.Enum("json", "mermaid"),
		mcp.DefaultString("json"),
	),
)

// embeddingsTool is the embeddings descriptor exported as an MCP tool.
var embeddingsTool = toolFromDescriptor(tools.OpenAIEmbeddings)

// toolFromDescriptor converts a tool descriptor into an MCP tool schema.
// Secret fields are optional since the server supplies its configured
// credential.
func toolFromDescriptor(d tools.Descriptor) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(d.Description + ". " + d.LongDescription)}
	for _, f := range d.Fields {
		desc := f.Title
		if f.Placeholder != "" {
			desc += ": " + f.Placeholder
		}
		if f.Secret {
			desc += " (defaults to the configured key)"
		}

		props := []mcp.PropertyOption{mcp.Description(desc)}
		if f.Required && !f.Secret {
			props = append(props, mcp.Required())
		}
		if len(f.Options) > 0 {
			props = append(props, mcp.Enum(f.Options...))
		}
		if f.Default != "" {
			props = append(props, mcp.DefaultString(f.Default))
		}
		opts = append(opts, mcp.WithString(f.Key, props...))
	}
	return mcp.NewTool(d.Type, opts...)
}
