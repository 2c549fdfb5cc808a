package pipeline

// Defaults for message processing.
const (
	// SnippetLength is how much of a failed message is echoed back in its outcome.
	SnippetLength = 100

	// dateLayout is the canonical transaction date format.
	dateLayout = "2006-01-02"
)
