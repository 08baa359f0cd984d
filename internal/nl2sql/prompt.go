package nl2sql

import "fmt"

// NoSchemaText stands in for the schema when no database is connected.
const NoSchemaText = "-- No database connected."

const promptTemplate = "You are an expert SQL assistant. Based on the following schema and request, write a SQL query.\n" +
	"Schema:\n%s\n\n" +
	"Request: %s\n\n" +
	"Respond ONLY with a valid SQL query. No explanation, markdown, or comments."

// BuildPrompt embeds schemaText and request verbatim in the fixed
// instruction template.
func BuildPrompt(schemaText, request string) string {
	return fmt.Sprintf(promptTemplate, schemaText, request)
}
