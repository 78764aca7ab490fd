package ruleconfig

// Source produces the flat, hierarchy-merged key/value configuration that
// applies to a project file.
type Source interface {
	Parse(projectPath string) (map[string]string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(projectPath string) (map[string]string, error)

func (f SourceFunc) Parse(projectPath string) (map[string]string, error) { return f(projectPath) }
