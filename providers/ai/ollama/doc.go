// Package ollama implements the [ai.Provider] and [ai.StreamProvider]
// interfaces for Ollama-style local model servers.
//
// It handles request conversion from the generic [ai.ChatRequest] format to
// the server's chat and prompt-completion wire formats, response mapping back
// to [ai.ChatResponse], and newline-delimited JSON streaming (with an SSE
// fallback for proxies that reframe the stream). Model-family quirks such as
// reasoning models that reject sampling parameters or models without
// system-message support are applied automatically from the model id and can
// be overridden per provider.
//
// The primary entry point is [NewOllamaProvider], which reads OLLAMA_BASE_URL
// and OLLAMA_API_KEY from the environment and defaults to a local server at
// http://localhost:11434/api. Use [OllamaProvider.WithBaseURL],
// [OllamaProvider.WithHttpClient], [OllamaProvider.WithCompatibility], or
// [OllamaProvider.WithModelFamily] to configure the provider
// programmatically.
package ollama
