package html

// Region is the CSS text of one <style> element
type Region struct {
	// Content is the raw text between the tags
	Content string
	// StartByte and EndByte delimit Content in the HTML source
	StartByte uint
	EndByte   uint
	// StartLine and StartCol are the 0-indexed position of Content
	StartLine uint
	StartCol  uint
}
