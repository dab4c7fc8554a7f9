package topics

// Renderer formats topic content for terminal display.
type Renderer interface {
	// Render takes raw content and its format (a file extension such
	// as ".md") and returns the text to print.
	Render(content string, format string) string
}

// PlainRenderer prints content exactly as stored.
type PlainRenderer struct{}

// Render returns the content unchanged.
func (r *PlainRenderer) Render(content string, format string) string {
	return content
}
