// Package llm sends chat requests to the OpenAI Responses API.
//
// The API key is read from the Secrets Manager secret named by
// LLM_API_KEYS_SECRET_ARN and cached like any other secret. Requests carry a
// normalized billing tag in metadata and in the user field.
package llm
