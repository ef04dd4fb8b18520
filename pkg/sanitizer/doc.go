// Package sanitizer provides the string transformations behind the default
// sanitizers of the validation engine.
//
// The helpers are grouped conceptually into:
//
//   - Security – HTML entity escaping of the characters that can open a tag
//     or an attribute, and filename character replacement.
//
//   - Format – URL normalisation restricted to http and https, e-mail domain
//     extraction.
//
//   - Text – Unicode NFC normalisation and whitespace folding for legal text
//     bodies, rune-aware truncation for log and audit previews.
//
// All helpers are small, focused and stateless. The higher-order Apply and
// Compose helpers build pipelines out of them:
//
//	clean := sanitizer.Compose(
//	    sanitizer.NormalizeText,
//	    sanitizer.EscapeHTML,
//	)
//
//	safe := clean("  Article  12 <b>bis</b> ") // "Article 12 &lt;b&gt;bis&lt;&#x2F;b&gt;"
//
// # Error handling
//
// None of the helpers returns an error or panics. They fall back to a safe
// result (an empty string for URLs) when the input cannot be sanitised.
//
// # Concurrency
//
// There is no package state besides pre-compiled regular expressions and
// replacers, so every helper is safe for concurrent use.
package sanitizer
