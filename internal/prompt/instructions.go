package prompt

import (
	"fmt"
	"strings"
)

// BlockTypes is the closed vocabulary of integration block types the model
// is allowed to emit.
var BlockTypes = []string{"google_docs", "google_sheets", "google_drive", "gmail", "calendar"}

const systemInstructionTemplate = `You are a workflow builder assistant. Generate JSON responses in this format:
{
  "blocks": [
    {
      "name": "Descriptive Block Name",
      "type": "google_docs"
    }
  ],
  "edges": [
    {
      "source": "First Block Name",
      "target": "Second Block Name"
    }
  ]
}

Block types can be: %s.
Ensure block names are unique and edges connect blocks by their exact names.
Create a logical flow between blocks based on the user's request.`

// SystemInstruction returns the fixed system message sent ahead of every
// user prompt.
func SystemInstruction() string {
	return fmt.Sprintf(systemInstructionTemplate, strings.Join(BlockTypes, ", "))
}
