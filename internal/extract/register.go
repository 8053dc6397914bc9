package extract

// RegisterDefaults wires every built-in Strategy into r under its
// conventional extensions, at process wiring time — per spec.md's Non-goal
// on dynamic plugin discovery, registration is an explicit call list rather
// than init-time magic.
func RegisterDefaults(r *Registry, markdownPolicy MarkdownChunkPolicy) {
	r.Register([]string{".go"}, NewGoStrategy())
	r.Register([]string{".ts", ".tsx"}, NewTypeScriptStrategy())
	r.Register([]string{".js", ".jsx", ".mjs", ".cjs"}, NewJavaScriptStrategy())
	r.Register([]string{".py"}, NewPythonStrategy())
	r.Register([]string{".java"}, NewJavaStrategy())
	r.Register([]string{".php"}, NewPHPStrategy())
	r.Register([]string{".rb"}, NewRubyStrategy())
	r.Register([]string{".rs"}, NewRustStrategy())
	r.Register([]string{".c", ".h", ".cpp", ".cc", ".hpp"}, NewCStrategy())
	r.Register([]string{".kt", ".kts"}, NewKotlinStrategy())
	r.Register([]string{".dart"}, NewDartStrategy())
	r.Register([]string{".md", ".markdown"}, NewMarkdownStrategy(markdownPolicy))
	r.Register([]string{".json"}, NewJSONStrategy())
	r.Register([]string{".toml"}, NewTOMLStrategy())
	r.Register([]string{".xml"}, NewXMLStrategy())
}
