package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDefinition_SpecTypeWins(t *testing.T) {
	assert.Equal(t, FormatOpenAPI, classifyDefinition("openapi", "anything"))
	assert.Equal(t, FormatAsyncAPI, classifyDefinition("AsyncAPI", ""))
	assert.Equal(t, FormatGraphQL, classifyDefinition("graphql", ""))
	assert.Equal(t, FormatGRPC, classifyDefinition("grpc", ""))
	assert.Equal(t, FormatTRPC, classifyDefinition("trpc", ""))
}

func TestClassifyDefinition_ContentSniff(t *testing.T) {
	assert.Equal(t, FormatOpenAPI, classifyDefinition("", "openapi: 3.0.0"))
	assert.Equal(t, FormatOpenAPI, classifyDefinition("", "swagger: '2.0'"))
	assert.Equal(t, FormatAsyncAPI, classifyDefinition("", "asyncapi: 2.6.0"))
	assert.Equal(t, FormatGRPC, classifyDefinition("", `syntax = "proto3";`))
	assert.Equal(t, FormatGraphQL, classifyDefinition("", "type Query {\n  orders: [Order]\n}"))
	assert.Equal(t, FormatJSON, classifyDefinition("", `{"foo": 1}`))
	assert.Equal(t, FormatOpenAPI, classifyDefinition("", `{"openapi": "3.0.0"}`))
	assert.Equal(t, FormatUnknown, classifyDefinition("", "plain words"))
}

func TestClassifyDefinition_SniffBounded(t *testing.T) {
	// Hallmark beyond the sniff window is not seen
	padding := make([]byte, sniffLimit)
	for i := range padding {
		padding[i] = 'x'
	}
	def := string(padding) + "\nopenapi: 3.0.0"
	assert.Equal(t, FormatUnknown, classifyDefinition("", def))
}

func TestDefinitionMIMEType_AllPlainTextForNow(t *testing.T) {
	for _, f := range []DefinitionFormat{
		FormatOpenAPI, FormatAsyncAPI, FormatGraphQL, FormatGRPC, FormatTRPC, FormatJSON, FormatUnknown,
	} {
		assert.Equal(t, "text/plain", definitionMIMEType(f))
	}
}
