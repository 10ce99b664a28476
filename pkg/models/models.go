package models

// LoremRequest is the body of a lorem expansion request
type LoremRequest struct {
	// Abbreviation is a lorem snippet name such as "lorem" or "loremru10".
	Abbreviation string `json:"abbreviation,omitempty"`
	// Parent wraps the generated nodes in an element, e.g. "ul" or "p".
	Parent     string `json:"parent,omitempty"`
	Repeat     int    `json:"repeat,omitempty"`
	// WordCount and SkipCommon are pointers so an explicit 0 or false
	// overrides the server defaults.
	WordCount  *int   `json:"word_count,omitempty"`
	SkipCommon *bool  `json:"skip_common,omitempty"`
	Lang       string `json:"lang,omitempty"`

	Stream        bool           `json:"stream,omitempty"`
	StreamOptions *StreamOptions `json:"stream_options,omitempty"`
}

// StreamOptions represents streaming options
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage,omitempty"`
	// ChunkSize is the number of words sent per chunk.
	ChunkSize int `json:"chunk_size,omitempty"`

	// DelayMinMs/DelayMaxMs configure a randomized per-chunk latency in
	// milliseconds. If only one is set, that value is used as a fixed delay.
	DelayMinMs int `json:"delay_min_ms,omitempty"`
	DelayMaxMs int `json:"delay_max_ms,omitempty"`

	// TokensPerSecond throttles chunk emission to roughly this many words
	// per second when > 0.
	TokensPerSecond float64 `json:"tokens_per_second,omitempty"`
}

// LoremResponse represents a completed expansion
type LoremResponse struct {
	ID       string    `json:"id"`
	Object   string    `json:"object"`
	Created  int64     `json:"created"`
	Lang     string    `json:"lang"`
	Markup   string    `json:"markup"`
	Elements []Element `json:"elements"`
	Usage    Usage     `json:"usage"`
}

// Element is a rendered tree element
type Element struct {
	Name     string    `json:"name,omitempty"`
	Value    string    `json:"value,omitempty"`
	Children []Element `json:"children,omitempty"`
}

// Usage reports how much text was generated
type Usage struct {
	Words int `json:"words"`
}

// LoremChunk represents a chunk in a streaming response
type LoremChunk struct {
	ID           string  `json:"id"`
	Object       string  `json:"object"`
	Created      int64   `json:"created"`
	Index        int     `json:"index"`
	Name         string  `json:"name,omitempty"`
	Delta        string  `json:"delta,omitempty"`
	FinishReason *string `json:"finish_reason"`
	Usage        *Usage  `json:"usage,omitempty"`
}

// Language describes a bundled dictionary
type Language struct {
	ID     string `json:"id"`
	Tag    string `json:"tag"`
	Words  int    `json:"words"`
	Common string `json:"common,omitempty"`
}

// LanguageList is the response of the languages endpoint
type LanguageList struct {
	Object string     `json:"object"`
	Data   []Language `json:"data"`
}

// ErrorResponse is returned for rejected requests
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes an error
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
