package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/michaelbrown/codechat/internal/interpreter"
	"github.com/michaelbrown/codechat/internal/llm"
)

// Tool names exposed to the model.
const (
	ExecutePythonTool = "execute_python"
	ListFilesTool     = "list_files"
)

// RegisterInterpreter installs the code-interpreter tools backed by the
// given session-bound client.
func RegisterInterpreter(r *Registry, client *interpreter.Client) {
	r.Register(llm.ToolDef{
		Name: ExecutePythonTool,
		Description: "Execute Python code in a sandboxed environment and return the printed output, " +
			"errors, and the value of the last expression. State (variables, files) persists " +
			"between calls within the same conversation.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "The Python code to execute",
				},
			},
			"required": []string{"code"},
		},
	}, func(ctx context.Context, args map[string]any) (string, error) {
		code, ok := args["code"].(string)
		if !ok || code == "" {
			return "", fmt.Errorf("'code' argument must be a non-empty string")
		}
		result, err := client.Execute(ctx, code)
		if err != nil {
			return "", err
		}
		return result.Text(), nil
	})

	r.Register(llm.ToolDef{
		Name:        ListFilesTool,
		Description: "List the files currently present in the sandboxed environment.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}, func(ctx context.Context, args map[string]any) (string, error) {
		files, err := client.ListFiles(ctx)
		if err != nil {
			return "", err
		}
		if len(files) == 0 {
			return "(no files)", nil
		}
		var b strings.Builder
		for _, f := range files {
			fmt.Fprintf(&b, "%s (%d bytes)\n", f.Filename, f.SizeInBytes)
		}
		return b.String(), nil
	})
}
