// Package llmbridge generates commit messages by rendering a prompt
// template (diff + recent commit subjects as style reference) and piping it
// to a configured shell command's stdin, reading back trimmed stdout.
//
// Grounded on the teacher's internal/cmd subprocess-error-handling idiom
// (stderr captured into the returned error) and the Rust original's
// src/llm.rs prompt-template-then-subprocess approach.
package llmbridge
