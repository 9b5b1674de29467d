// Package generator wraps calls to an external text-generation service for
// paraphrase expansion.
//
// The generator supports multiple providers (OpenAI, Google Gemini) behind a
// single Provider interface and handles bounded retries, response parsing,
// and count validation for production use.
//
// # Basic Usage
//
//	// Create provider (auto-detects from environment)
//	provider, err := generator.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	client := generator.NewClient(provider, generator.DefaultOptions())
//	questions, err := client.Generate(ctx, answer, "voter_registration", examples)
//
// # Provider Selection
//
// The factory selects a provider based on environment variables:
//
//  1. If PARAGEN_PROVIDER is set → use the specified provider
//  2. Else if OPENAI_API_KEY is set → use OpenAI
//  3. Else if GEMINI_API_KEY is set → use Gemini
//
// Missing credentials are a configuration error reported before any work is
// attempted.
//
// # Retry Behavior
//
// Each Generate call issues at most MaxAttempts requests. A response with
// fewer parsed lines than the target count triggers a retry after a short
// delay; a transport or service fault triggers a retry after a longer delay.
// Delays grow with the attempt number. Exhausting all attempts returns
// types.ErrGenerationFailed; no partial results are retained across attempts.
//
// # Response Parsing
//
// The service is asked for exactly N outputs, numbered, one per line. Real
// responses drift: extra whitespace, inconsistent numbering, blank lines.
// The parser tolerates all of these: it splits on line breaks, drops blanks,
// strips leading enumeration prefixes ("12.", "12)", "12-"), and trims
// whitespace before validating the count.
package generator
