package mapper

import "strings"

// DefinitionFormat classifies an API definition's format
type DefinitionFormat string

const (
	FormatOpenAPI  DefinitionFormat = "openapi"
	FormatAsyncAPI DefinitionFormat = "asyncapi"
	FormatGraphQL  DefinitionFormat = "graphql"
	FormatGRPC     DefinitionFormat = "grpc"
	FormatTRPC     DefinitionFormat = "trpc"
	FormatJSON     DefinitionFormat = "json"
	FormatUnknown  DefinitionFormat = "unknown"
)

// sniffLimit bounds how much of a definition the content sniff inspects
const sniffLimit = 200

// classifyDefinition determines a definition's format from the entity's
// declared spec.type, falling back to sniffing the leading content for
// format hallmarks.
func classifyDefinition(specType, definition string) DefinitionFormat {
	switch strings.ToLower(specType) {
	case "openapi":
		return FormatOpenAPI
	case "asyncapi":
		return FormatAsyncAPI
	case "graphql":
		return FormatGraphQL
	case "grpc":
		return FormatGRPC
	case "trpc":
		return FormatTRPC
	}

	head := definition
	if len(head) > sniffLimit {
		head = head[:sniffLimit]
	}
	lower := strings.ToLower(head)

	switch {
	case strings.Contains(lower, "openapi:") || strings.Contains(lower, "swagger:"):
		return FormatOpenAPI
	case strings.Contains(lower, "asyncapi:"):
		return FormatAsyncAPI
	case strings.Contains(lower, `syntax = "proto`):
		return FormatGRPC
	case strings.Contains(head, "type Query") || strings.Contains(head, "type Mutation"):
		return FormatGraphQL
	case strings.HasPrefix(strings.TrimSpace(definition), "{"):
		if strings.Contains(lower, "openapi") {
			return FormatOpenAPI
		}
		return FormatJSON
	}
	return FormatUnknown
}

// definitionMIMEType maps a classified format to the MIME type the index
// accepts. Every format routes to text/plain until richer types are
// supported, but classification still runs: future formats may diverge.
func definitionMIMEType(format DefinitionFormat) string {
	switch format {
	case FormatOpenAPI, FormatAsyncAPI, FormatGraphQL, FormatGRPC, FormatTRPC, FormatJSON, FormatUnknown:
		return "text/plain"
	}
	return "text/plain"
}
