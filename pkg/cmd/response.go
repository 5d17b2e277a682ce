package cmd

// Response is what a command sends back. Adapters translate it into their own
// message format; the core never inspects upstream payloads beyond this.
type Response struct {
	Content    string
	Embeds     []Embed
	Files      []File
	Components []ButtonRow
	Ephemeral  bool
	// ClearComponents removes interactive controls when editing a message.
	ClearComponents bool
}

type Embed struct {
	Title       string
	URL         string
	Description string
	Color       int
	Author      string
	AuthorIcon  string
	Image       string
	Thumbnail   string
	Footer      string
	FooterIcon  string
	Fields      []EmbedField
	Timestamp   bool
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type ButtonStyle int

const (
	ButtonSecondary ButtonStyle = iota
	ButtonPrimary
	ButtonLink
	ButtonDanger
)

type Button struct {
	ID       string
	Label    string
	URL      string
	Style    ButtonStyle
	Disabled bool
}

type ButtonRow []Button

// Text is a shorthand for a plain content response.
func Text(content string, ephemeral bool) *Response {
	return &Response{Content: content, Ephemeral: ephemeral}
}
