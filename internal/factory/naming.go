package factory

import "strings"

// BuildKey derives the registry key for a component: the component name
// joined with the final element of the package path, for example
// ("github", "internal/provider") -> "github_provider".
func BuildKey(name, pkg string) string {
	return name + "_" + lastSegment(pkg)
}

// BuildTypeName derives the conventional type name for a registry key, for
// example ("github", "provider") -> "GithubProvider".
func BuildTypeName(name, pkg string) string {
	return SnakeToPascal(BuildKey(name, pkg))
}

// SnakeToPascal converts a snake_case identifier to PascalCase.
func SnakeToPascal(snake string) string {
	parts := strings.Split(snake, "_")

	var builder strings.Builder

	for _, part := range parts {
		if part == "" {
			continue
		}

		builder.WriteString(strings.ToUpper(part[:1]))
		builder.WriteString(part[1:])
	}

	return builder.String()
}

// lastSegment returns the final element of a slash or dot separated path.
func lastSegment(pkg string) string {
	if idx := strings.LastIndex(pkg, "/"); idx >= 0 {
		pkg = pkg[idx+1:]
	}

	if idx := strings.LastIndex(pkg, "."); idx >= 0 {
		pkg = pkg[idx+1:]
	}

	return pkg
}
