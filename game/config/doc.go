// Package config loads server configuration from environment variables.
//
// All settings have working defaults, so a bare `confident-trivia` starts a
// playable local server. The question generators are optional: without API
// keys the server falls back to the built-in question bank.
//
// Recognized variables:
//
//	HOST, PORT                 listen address (default 0.0.0.0:8080)
//	TOTAL_ROUNDS               rounds per game (default 10)
//	REAP_INTERVAL              reaper sweep period (default 10m)
//	MAX_INACTIVE               idle threshold before cleanup (default 60m)
//	GOOGLE_API_KEY             enables the Gemini question source
//	OPENAI_API_KEY             enables the OpenAI question source
//	QUESTIONS_FILE             extra questions merged into the local bank
//	NGROK_ENABLED, NGROK_DOMAIN  optional public tunnel
//	DEBUG                      verbose logging
package config
