// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

// codeLanguages maps the API's numeric language ids to fence info strings.
var codeLanguages = map[int]string{
	1:  "plaintext",
	2:  "python",
	3:  "javascript",
	4:  "java",
	5:  "cpp",
	6:  "c",
	7:  "csharp",
	8:  "php",
	9:  "ruby",
	10: "go",
	11: "rust",
	12: "swift",
	13: "kotlin",
	14: "typescript",
	15: "html",
	16: "css",
	17: "sql",
	18: "shell",
	19: "bash",
	20: "powershell",
	21: "json",
	22: "xml",
	23: "yaml",
	24: "markdown",
}

// codeLanguage resolves a language id, defaulting to plaintext for missing or
// unknown ids.
func codeLanguage(id int) string {
	if name, ok := codeLanguages[id]; ok {
		return name
	}
	return "plaintext"
}
