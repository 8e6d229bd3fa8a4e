package book

// Book is the ordered sequence of chapter boundaries extracted from a document.
type Book struct {
	Title    string    // Document title (from metadata or filename)
	Format   string    // Source format, "pdf" or "epub"
	Sections []Section // Chapter boundaries in reading order
}

// Section is one raw chapter boundary before cleaning.
type Section struct {
	Title     string // Table of contents title or document item name
	Text      string // Raw extracted text, pages concatenated
	PageStart int    // First source page (1-based, 0 if N/A)
	PageEnd   int    // Last source page (inclusive, 0 if N/A)
}

// TOCEntry is a single outline entry of a paginated document.
type TOCEntry struct {
	Level int
	Title string
	Page  int // 1-based start page, 0 if the destination could not be resolved
}

// Chapter is a cleaned, titled span of content. It is the output record.
type Chapter struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}
