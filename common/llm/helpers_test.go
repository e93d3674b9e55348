//go:build unit

package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type sentFormat struct {
	Type   string          `json:"type"`
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
	Strict *bool           `json:"strict"`
}

// sentRequest is the wire shape of a Responses API call.
type sentRequest struct {
	Model     string        `json:"model"`
	Input     []sentMessage `json:"input"`
	Reasoning *struct {
		Effort string `json:"effort"`
	} `json:"reasoning"`
	Metadata map[string]string `json:"metadata"`
	User     string            `json:"user"`
	Text     *struct {
		Format sentFormat `json:"format"`
	} `json:"text"`
}

func encodeParams(t *testing.T, req Request) sentRequest {
	t.Helper()

	params, err := buildParams(req)
	require.NoError(t, err)

	raw, err := json.Marshal(params)
	require.NoError(t, err)

	var sent sentRequest
	require.NoError(t, json.Unmarshal(raw, &sent))

	return sent
}

// replyJSON is a minimal Responses API answer carrying text.
func replyJSON(text string) string {
	encoded, _ := json.Marshal(text)

	return `{
		"id": "resp_1",
		"object": "response",
		"model": "gpt-5-2025",
		"output": [
			{"type": "reasoning", "id": "rs_1", "summary": []},
			{"type": "message", "id": "msg_1", "role": "assistant", "status": "completed",
			 "content": [{"type": "output_text", "text": ` + string(encoded) + `, "annotations": []}]}
		],
		"usage": {"input_tokens": 5, "output_tokens": 2, "total_tokens": 7}
	}`
}
