package batchtext

const (
	// CommentPrefix starts a comment line.
	CommentPrefix = "#"
	// SchemaDirective declares the key schema for the lines that follow.
	SchemaDirective = "@schema"
	// ValueSeparator splits the key part of an entry line from its value.
	ValueSeparator = ":"
	// FieldAssignment binds a field name to its value in schema mode.
	FieldAssignment = "="
	// WidthSeparator binds a field name to its width in a schema directive.
	WidthSeparator = ":"

	// ScannerInitialBufferSize is the initial line buffer.
	ScannerInitialBufferSize = 64 * 1024
	// ScannerMaxLineSize bounds a single line.
	ScannerMaxLineSize = 1024 * 1024

	// EncodingWindows1252 is the default input encoding.
	EncodingWindows1252 = "WINDOWS-1252"
	// EncodingUTF8 reads input as UTF-8.
	EncodingUTF8 = "UTF-8"
)
