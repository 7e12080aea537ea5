// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/deep-research/pkg/types"
)

// ErrParse reports that a structured model response was not valid JSON.
var ErrParse = errors.New("response is not valid JSON")

// ErrSchemaValidation reports that a structured model response parsed as
// JSON but does not match the query-list schema.
var ErrSchemaValidation = errors.New("response does not match the query list schema")

// SERPQuerySchemaJSON is the JSON schema for the query-generation output.
// It is embedded verbatim in the query-generation prompts and doubles as the
// documentation of the validation contract.
const SERPQuerySchemaJSON = `{
    "type": "array",
    "items": {
        "type": "object",
        "properties": {
            "query": {
                "type": "string",
                "description": "The SERP query."
            },
            "researchGoal": {
                "type": "string",
                "description": "The goal of the research this query is meant to accomplish, then how to advance the research once results are found, including additional research directions. Be as specific as possible."
            }
        },
        "required": ["query", "researchGoal"]
    },
    "description": "List of SERP queries."
}`

// serpQueryItem mirrors one element of the model's JSON response. Pointers
// distinguish a missing field from an empty string for validation.
type serpQueryItem struct {
	Query        *string `json:"query"`
	ResearchGoal *string `json:"researchGoal"`
}

// ParseSERPQueries parses and validates a query-generation response into
// search tasks. Markdown code fences around the JSON are tolerated. The
// returned error wraps ErrParse for malformed JSON and ErrSchemaValidation
// for well-formed JSON of the wrong shape.
func ParseSERPQueries(text string) ([]types.SearchTask, error) {
	cleaned := strings.TrimSpace(RemoveJSONMarkdown(text))
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrParse)
	}

	var raw json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var items []serpQueryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of {query, researchGoal} objects", ErrSchemaValidation)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: query list is empty", ErrSchemaValidation)
	}

	tasks := make([]types.SearchTask, 0, len(items))
	for i, item := range items {
		if item.Query == nil || *item.Query == "" {
			return nil, fmt.Errorf("%w: item %d is missing query", ErrSchemaValidation, i)
		}
		goal := ""
		if item.ResearchGoal != nil {
			goal = *item.ResearchGoal
		}
		tasks = append(tasks, types.SearchTask{Query: *item.Query, ResearchGoal: goal})
	}
	return tasks, nil
}

// RemoveJSONMarkdown strips a surrounding markdown code fence (```json ... ```
// or plain ``` ... ```) from a model response, leaving the inner payload.
func RemoveJSONMarkdown(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the info string on the opening fence line ("json", "JSON", ...).
		first := strings.TrimSpace(s[:idx])
		if len(first) <= 8 && !strings.ContainsAny(first, "{}[]") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
