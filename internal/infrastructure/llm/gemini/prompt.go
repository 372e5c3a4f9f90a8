package gemini

import "fmt"

const systemPrompt = `Eres un asistente virtual de la municipalidad que ayuda a los vecinos con trámites y procedimientos administrativos.
Responde siempre en español, de forma clara y concreta.
Usa únicamente la información de los documentos proporcionados.
Si los documentos no contienen la respuesta, dilo directamente y sugiere consultar en la oficina municipal correspondiente.
Cuando cites requisitos o pasos, enuméralos en orden.`

// The conversation history goes before the retrieved documents so the model
// resolves follow-up references ("¿y ese formulario dónde lo pido?") against
// the dialogue first.
func buildAnswerPrompt(query, contextBlock, history string) string {
	switch {
	case history != "" && contextBlock != "":
		return fmt.Sprintf("Conversación previa:\n%s\n\nDocumentos municipales:\n%s\n\nPregunta del vecino:\n%s", history, contextBlock, query)
	case history != "":
		return fmt.Sprintf("Conversación previa:\n%s\n\nNo se encontraron documentos relevantes.\n\nPregunta del vecino:\n%s", history, query)
	case contextBlock != "":
		return fmt.Sprintf("Documentos municipales:\n%s\n\nPregunta del vecino:\n%s", contextBlock, query)
	default:
		return fmt.Sprintf("No se encontraron documentos relevantes.\n\nPregunta del vecino:\n%s", query)
	}
}
