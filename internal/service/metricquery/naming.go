package metricquery

import "strings"

// normalizeName lowercases s and replaces only its first '-' with '_'.
// Deployment names with several dashes keep the later ones.
func normalizeName(s string) string {
	return strings.ToLower(strings.Replace(s, "-", "_", 1))
}

// databaseName returns the unquoted {project}_{deployment} identifier.
func databaseName(project, deployment string) string {
	return normalizeName(project) + "_" + normalizeName(deployment)
}

// TablePrefix returns the {project}_{deployment}_table_ prefix every
// rendered table identifier starts with.
func TablePrefix(project, deployment string) string {
	return databaseName(project, deployment) + "_table_"
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
