package clover

import "strings"

var separators = strings.NewReplacer("/", ".", `\`, ".")

// PackageName turns a relative directory path such as "a/b/" into "a.b".
func PackageName(relPath string) string {
	return strings.TrimSuffix(separators.Replace(relPath), ".")
}

// ClassName returns the last path element, accepting either separator.
func ClassName(relPath string) string {
	if i := strings.LastIndexAny(relPath, `/\`); i >= 0 {
		return relPath[i+1:]
	}
	return relPath
}
