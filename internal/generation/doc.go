// Package generation implements the AI flashcard generation pipeline:
// content classification, prompt composition, the provider boundary,
// structured-output parsing, schema-adaptive field mapping, and quality
// scoring. It abstracts the details of LLM API integration behind the
// Generator interface, allowing the application to generate cards from
// free-form text without coupling to a specific backend.
package generation
