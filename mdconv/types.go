package mdconv

// Category identifies which configured label list a heading matched.
type Category string

const (
	CategoryVideo  Category = "video"
	CategoryLesson Category = "lesson"
	CategoryNone   Category = "none"
)

// Report row status values. The status column is the single source of truth
// for "did this page convert usefully".
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// Block is one heading-delimited section of a markdown document.
// Body holds the raw lines between the heading and the next heading of equal
// or shallower depth, joined with newlines.
type Block struct {
	Level   int    `json:"level"`
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Selection is the outcome of extracting one document: which category matched,
// the matched heading, and the selected raw body. Category == CategoryNone
// implies an empty Body. VideoLen and LessonLen report the raw body character
// counts of the first non-empty candidate per category, for diagnostics.
type Selection struct {
	Category  Category `json:"category"`
	Heading   string   `json:"heading,omitempty"`
	Body      string   `json:"body"`
	VideoLen  int      `json:"video_len"`
	LessonLen int      `json:"lesson_len"`
}

// Record is one emitted training unit. Long documents yield several records
// sharing document metadata and differing in ChunkIndex/TextMarkdown/CharLen.
// CharLen counts characters, not bytes.
type Record struct {
	RunID           string   `json:"run_id"`
	DocID           string   `json:"doc_id"`
	PageID          string   `json:"page_id"`
	FileName        string   `json:"file_name"`
	PageTitle       string   `json:"page_title"`
	SelectedSection Category `json:"selected_section"`
	SelectedHeading string   `json:"selected_heading"`
	ChunkIndex      int      `json:"chunk_index"`
	TextMarkdown    string   `json:"text_markdown"`
	CharLen         int      `json:"char_len"`
}

// ReportRow summarizes one input file, regardless of how many chunks it
// produced.
type ReportRow struct {
	FileName        string   `json:"file_name"`
	PageID          string   `json:"page_id"`
	PageTitle       string   `json:"page_title"`
	VideoLen        int      `json:"video_len"`
	LessonLen       int      `json:"lesson_len"`
	SelectedSection Category `json:"selected_section"`
	CharLen         int      `json:"char_len"`
	Status          string   `json:"status"`
}

// Result aggregates a whole conversion run.
type Result struct {
	RunID   string      `json:"run_id"`
	Records []Record    `json:"records"`
	Report  []ReportRow `json:"report"`
}
