// Package bytepipe implements a single-producer, single-consumer byte pipe
// backed by a chain of pooled fixed-size blocks. The writer allocates block
// space and commits bytes into it without intermediate copies, the reader
// examines and consumes them through zero-copy views, and watermark
// thresholds pause the writer whenever it outruns the reader.
package bytepipe
