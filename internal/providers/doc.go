// Package providers implements the Reviewer interface for each supported LLM
// provider.
//
// Supported providers: Google (Gemini, the default), Anthropic (Claude) and
// OpenAI (GPT). Each wraps the vendor's Go SDK. SDK-level retries are turned
// off: a failed call is reported once, classified as an authentication,
// rate-limit or generic error, and never retried.
//
// Endpoints and HTTP clients are injectable through [Options] so that tests
// can point providers at local httptest servers.
//
// Use [New] to obtain a Reviewer by provider name, model and API key.
package providers
