// Package questions supplies trivia questions to the game engine.
//
// The questions package implements:
//   - The Source interface consumed by the game service at start time
//   - A chain combinator with fallback ordering across sources
//   - Remote generators (Gemini, OpenAI) producing mixed question variants
//   - A local bank that always answers, used as the last fallback
//   - Validation and loading of external question files
//
// Fallback Ordering:
//
// The service wires sources as a chain: remote generators first, local bank
// last. Each source either returns a usable question list or fails with
// ErrUnavailable (missing API key, network failure, malformed response); the
// chain moves on to the next source, so question supply only fails outright
// when every source does.
//
// Usage:
//
//	src := questions.NewChain(
//		questions.NewGemini(cfg.GeminiAPIKey),
//		questions.NewOpenAI(cfg.OpenAIAPIKey),
//		questions.NewBank(),
//	)
//	qs, err := src.Generate(ctx, 10, questions.Options{})
//
// Remote calls carry their own timeout through the supplied context plus an
// HTTP client timeout; the engine never awaits a source while holding a
// session lock.
package questions
