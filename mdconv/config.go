package mdconv

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Default label lists, matching the headings Notion course exports use.
// Labels are compared after normalization, so accent variants are redundant
// but kept for clarity when users edit the lists.
var (
	DefaultVideoLabels = []string{
		"videó szöveg", "video szoveg", "videó leirat", "video leirat",
		"transcript", "videó", "video",
	}
	DefaultLessonLabels = []string{
		"lecke szöveg", "lecke anyag", "leckeszöveg", "tananyag",
	}
)

const (
	DefaultChunkMaxLen  = 5500
	DefaultChunkOverlap = 400
	DefaultWorkers      = 4
)

// Config configures a conversion run. The zero value plus defaults() is a
// working configuration; an explicitly empty label list disables that
// category.
type Config struct {
	// RunID stamps every emitted record. Generated when empty.
	RunID string `yaml:"run_id" json:"run_id"`

	// VideoLabels and LessonLabels are matched against headings in order.
	// nil means "use defaults"; an empty non-nil slice disables the category.
	VideoLabels  []string `yaml:"video_labels" json:"video_labels"`
	LessonLabels []string `yaml:"lesson_labels" json:"lesson_labels"`

	// HeadingLevels are the heading depths considered for matching.
	// Subset of {2,3,4}; defaults to all three.
	HeadingLevels []int `yaml:"heading_levels" json:"heading_levels"`

	// ChunkMaxLen is the character budget per chunk (default 5500).
	// ChunkOverlap is how many characters consecutive chunks share
	// (default 400). NoChunk disables chunking entirely: one record per file.
	ChunkMaxLen  int  `yaml:"chunk_max_len" json:"chunk_max_len"`
	ChunkOverlap int  `yaml:"chunk_overlap" json:"chunk_overlap"`
	NoChunk      bool `yaml:"no_chunk" json:"no_chunk"`

	// Workers bounds the file-level fan-out (default 4).
	Workers int `yaml:"workers" json:"workers"`

	// Logger for per-file warnings.
	Logger *slog.Logger `yaml:"-" json:"-"`
}

// DefaultConfig returns a fully populated configuration.
func DefaultConfig() Config {
	c := Config{}
	c.defaults()
	return c
}

func (c *Config) defaults() {
	if c.VideoLabels == nil {
		c.VideoLabels = append([]string(nil), DefaultVideoLabels...)
	}
	if c.LessonLabels == nil {
		c.LessonLabels = append([]string(nil), DefaultLessonLabels...)
	}
	if len(c.HeadingLevels) == 0 {
		c.HeadingLevels = []int{2, 3, 4}
	}
	if c.ChunkMaxLen <= 0 {
		c.ChunkMaxLen = DefaultChunkMaxLen
		if c.ChunkOverlap == 0 {
			c.ChunkOverlap = DefaultChunkOverlap
		}
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Validate surfaces configuration errors before any document is processed.
// Chunk geometry is checked strictly: overlap >= max length would never
// advance the chunk cursor.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.HeadingLevels, validation.Required, validation.By(func(any) error {
			for _, lvl := range c.HeadingLevels {
				if lvl < 2 || lvl > 4 {
					return validation.NewError("notionconv.config.heading_level",
						fmt.Sprintf("heading level %d out of range 2-4", lvl))
				}
			}
			return nil
		})),
		validation.Field(&c.VideoLabels, validation.By(func(any) error {
			if len(c.VideoLabels) == 0 && len(c.LessonLabels) == 0 {
				return validation.NewError("notionconv.config.labels",
					"at least one label list must be non-empty")
			}
			return nil
		})),
		validation.Field(&c.ChunkMaxLen, validation.By(func(any) error {
			if c.NoChunk {
				return nil
			}
			if c.ChunkMaxLen < 1 {
				return validation.NewError("notionconv.config.chunk_max_len",
					"chunk max length must be positive when chunking is enabled")
			}
			if c.ChunkOverlap < 0 {
				return validation.NewError("notionconv.config.chunk_overlap",
					"chunk overlap must not be negative")
			}
			if c.ChunkOverlap >= c.ChunkMaxLen {
				return validation.NewError("notionconv.config.chunk_overlap",
					fmt.Sprintf("chunk overlap %d must be smaller than chunk max length %d",
						c.ChunkOverlap, c.ChunkMaxLen))
			}
			return nil
		})),
	)
}

// LabelSet returns the configured label lists as a matcher input.
func (c Config) LabelSet() LabelSet {
	return LabelSet{Video: c.VideoLabels, Lesson: c.LessonLabels}
}

func (c Config) levelSet() map[int]bool {
	set := make(map[int]bool, len(c.HeadingLevels))
	for _, lvl := range c.HeadingLevels {
		set[lvl] = true
	}
	return set
}
