package storage

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/slate/pkg/domain/approval"
	"github.com/felixgeelhaar/slate/pkg/domain/lifecycle"
	"github.com/xeipuuv/gojsonschema"
)

const projectSchemaTemplate = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name", "owner", "state", "version"],
  "properties": {
    "id": { "type": "string", "pattern": "^[a-zA-Z0-9][a-zA-Z0-9_-]*$" },
    "name": { "type": "string", "minLength": 1 },
    "owner": { "type": "string", "minLength": 1 },
    "state": { "enum": %s },
    "version": { "type": "integer", "minimum": 0 },
    "fields": { "type": ["object", "null"] },
    "approvals": {
      "type": ["object", "null"],
      "propertyNames": { "enum": %s },
      "additionalProperties": {
        "type": "object",
        "properties": {
          "approved": { "type": "boolean" },
          "contact": { "type": "string" }
        }
      }
    },
    "history": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["from", "to", "at"],
        "properties": {
          "from": { "enum": %s },
          "to": { "enum": %s }
        }
      }
    }
  }
}`

var projectSchema = func() gojsonschema.JSONLoader {
	states, _ := json.Marshal(lifecycle.AllStates())
	roles, _ := json.Marshal(approval.ValidRoles())
	return gojsonschema.NewStringLoader(fmt.Sprintf(projectSchemaTemplate, states, roles, states, states))
}()

// SchemaError lists the schema violations found in a stored record.
type SchemaError struct {
	File   string
	Issues []string
}

func (e *SchemaError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("%s does not match the project schema: %s", e.File, e.Issues[0])
	}
	return fmt.Sprintf("%s does not match the project schema (%d issues)", e.File, len(e.Issues))
}

func validateProject(file string, data []byte) error {
	result, err := gojsonschema.Validate(projectSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to validate %s: %w", file, err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return &SchemaError{File: file, Issues: issues}
}
