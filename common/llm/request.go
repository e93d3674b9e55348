package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const defaultSchemaName = "response"

// Request is one chat call.
type Request struct {
	// Tag is normalized with NormalizeTag and used for billing. Blank tags
	// are not sent.
	Tag          string
	Intelligence Intelligence
	// SystemPrompt is omitted when empty.
	SystemPrompt string
	UserPrompts  []string
	// ResponseSchema is either a bare JSON schema or an object with name,
	// schema and strict keys. When set the reply must be JSON.
	ResponseSchema json.RawMessage
}

func (r Request) hasSchema() bool {
	return len(bytes.TrimSpace(r.ResponseSchema)) > 0
}

// billingTag is empty for blank tags.
func (r Request) billingTag() string {
	if strings.TrimSpace(r.Tag) == "" {
		return ""
	}

	return NormalizeTag(r.Tag)
}

func buildParams(req Request) (responses.ResponseNewParams, error) {
	model, effort, err := req.Intelligence.model()
	if err != nil {
		return responses.ResponseNewParams{}, err
	}

	var input responses.ResponseInputParam

	if req.SystemPrompt != "" {
		input = append(input, responses.ResponseInputItemParamOfMessage(req.SystemPrompt, responses.EasyInputMessageRoleSystem))
	}

	for _, p := range req.UserPrompts {
		input = append(input, responses.ResponseInputItemParamOfMessage(p, responses.EasyInputMessageRoleUser))
	}

	if len(input) == 0 {
		return responses.ResponseNewParams{}, ErrEmptyPrompt
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(model),
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: input},
	}

	if effort != "" {
		params.Reasoning = shared.ReasoningParam{Effort: shared.ReasoningEffort(effort)}
	}

	if req.hasSchema() {
		format, err := schemaFormat(req.ResponseSchema)
		if err != nil {
			return responses.ResponseNewParams{}, err
		}

		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{OfJSONSchema: format},
		}
	}

	if tag := req.billingTag(); tag != "" {
		params.Metadata = shared.Metadata{"billing_tag": tag}
		params.User = openai.String(tag)
	}

	return params, nil
}

func schemaFormat(raw json.RawMessage) (*responses.ResponseFormatTextJSONSchemaConfigParam, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: must be a JSON object", ErrInvalidSchema)
	}

	format := &responses.ResponseFormatTextJSONSchemaConfigParam{Name: defaultSchemaName}

	schema, wrapped := fields["schema"]
	if !wrapped {
		schema = raw
	}

	if err := json.Unmarshal(schema, &format.Schema); err != nil || format.Schema == nil {
		return nil, fmt.Errorf("%w: schema must be a JSON object", ErrInvalidSchema)
	}

	if !wrapped {
		return format, nil
	}

	if name, ok := fields["name"]; ok {
		if err := json.Unmarshal(name, &format.Name); err != nil || format.Name == "" {
			return nil, fmt.Errorf("%w: name must be a non-empty string", ErrInvalidSchema)
		}
	}

	if strict, ok := fields["strict"]; ok {
		var b bool
		if err := json.Unmarshal(strict, &b); err != nil {
			return nil, fmt.Errorf("%w: strict must be a boolean", ErrInvalidSchema)
		}

		format.Strict = openai.Bool(b)
	}

	return format, nil
}
