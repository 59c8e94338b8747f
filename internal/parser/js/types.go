package js

// Region is CSS text found in a JS/TS source: the body of a css tagged
// template, or a <style> element inside an html tagged template
type Region struct {
	// Content is the literal CSS text
	Content string
	// StartByte and EndByte delimit Content in the JS/TS source
	StartByte uint
	EndByte   uint
	// StartLine is the 0-indexed line in the JS/TS source where Content begins
	StartLine uint
	// StartCol is the 0-indexed column in the JS/TS source where Content begins
	StartCol uint
	// Tag is the template tag function name ("css" or "html")
	Tag string
}
