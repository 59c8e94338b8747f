package css

// Position is a 0-based line and byte column in the parsed source
type Position struct {
	Line      uint32
	Character uint32
}

// Range represents a range in the parsed source
type Range struct {
	Start Position
	End   Position
}

// Variable is a custom property declaration (--name: value)
type Variable struct {
	Name  string
	Value string
	Range Range
}

// VarCall is a var() reference
type VarCall struct {
	Name     string
	Fallback *string // nil when the call has no fallback
	Range    Range
}

// VariableSet lists the custom properties declared and referenced in a
// stylesheet, in source order
type VariableSet struct {
	Variables []*Variable
	VarCalls  []*VarCall
}
