package taskapi

import (
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/hylla/taskifyx/internal/board"
)

const taskSchemaURL = "https://taskifyx.local/schemas/task.json"

// taskSchemaJSON pins only what the board cannot work without: list shape and
// an identity per task. Other fields are read leniently, so
// a task with an unknown status loads and is left out of every column.
const taskSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "task": {
      "type": "object",
      "anyOf": [
        {"required": ["_id"]},
        {"required": ["id"]}
      ],
      "properties": {
        "_id": {"type": ["string", "number"]},
        "id": {"type": ["string", "number"]}
      }
    },
    "taskList": {
      "type": "array",
      "items": {"$ref": "#/definitions/task"}
    }
  }
}`

// schemas holds the compiled response shapes.
type schemas struct {
	task     *jsonschema.Schema
	taskList *jsonschema.Schema
}

func compileSchemas() (*schemas, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(taskSchemaURL, strings.NewReader(taskSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add task schema: %w", err)
	}
	task, err := compiler.Compile(taskSchemaURL + "#/definitions/task")
	if err != nil {
		return nil, fmt.Errorf("compile task schema: %w", err)
	}
	list, err := compiler.Compile(taskSchemaURL + "#/definitions/taskList")
	if err != nil {
		return nil, fmt.Errorf("compile task list schema: %w", err)
	}
	return &schemas{task: task, taskList: list}, nil
}

// validate checks a decoded JSON document and folds schema violations into
// ErrMalformedPayload.
func validate(schema *jsonschema.Schema, doc any) error {
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s", board.ErrMalformedPayload, summarizeSchemaError(err))
	}
	return nil
}

func summarizeSchemaError(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	var parts []string
	collectSchemaErrors(ve, &parts)
	if len(parts) == 0 {
		return ve.Message
	}
	return strings.Join(parts, "; ")
}

func collectSchemaErrors(err *jsonschema.ValidationError, parts *[]string) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*parts = append(*parts, loc+": "+err.Message)
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, parts)
	}
}
