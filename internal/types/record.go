package types

// Record is the content extracted from a single story page.
type Record struct {
	// URL is the story URL; it becomes the ledger identity key.
	URL string

	// Title is the text of the page <title>, empty when absent.
	Title string

	// Body is the concatenated paragraph and span text.
	Body string
}

// NewRecord creates a Record for the given story URL.
func NewRecord(storyURL, title, body string) *Record {
	return &Record{URL: storyURL, Title: title, Body: body}
}
