package llm

import (
	"strings"

	"github.com/nutrigen/nutrigen/internal/models"
)

// extractionPrompt asks for the structured JSON contract. The example object
// doubles as the schema: field names here must match the models package tags.
const extractionPrompt = `Analise o seguinte texto de uma avaliação nutricional que contém o histórico de medições.
O texto pode ter várias colunas de datas. Para cada métrica, extraia o valor correspondente a cada data.
Estruture a saída em um formato JSON que contenha uma lista de avaliações, onde cada item da lista representa uma data de avaliação.

Texto para análise:
--- TEXTO ---
{{TEXTO}}
--- FIM DO TEXTO ---

Formato JSON de saída esperado:
{
    "assessments": [
        {
            "date": "DD/MM/AAAA",
            "metrics": [
                { "name": "Peso", "value": 80.5, "unit": "kg" },
                { "name": "% Gordura", "value": 22.1, "unit": "%" },
                { "name": "Massa Muscular", "value": 35.0, "unit": "kg" }
            ]
        }
    ],
    "meal_plan": {
        "last_update_date": "DD/MM/AAAA",
        "meals": [
            {
                "name": "Café da Manhã",
                "items": [
                    { "food": "Ovo", "quantity": 2, "unit": "unidades" },
                    { "food": "Pão Integral", "quantity": 1, "unit": "fatia" }
                ]
            }
        ]
    }
}

Se uma informação não for encontrada, omita a chave ou use um valor nulo.
O plano alimentar geralmente corresponde à avaliação mais recente.`

// extractionTextSlot marks where the document text goes. Plain replacement,
// not Sprintf: the template holds literal percent signs ("% Gordura") that a
// format verb pass would mangle.
const extractionTextSlot = "{{TEXTO}}"

func buildExtractionPrompt(text string) string {
	return strings.Replace(extractionPrompt, extractionTextSlot, text, 1)
}

// answerPreamble frames the assistant role and pins answers to the retrieved
// context.
const answerPreamble = `Você é um assistente de nutrição. Sua tarefa é responder perguntas sobre os documentos fornecidos.
Use o contexto dos documentos para fornecer respostas precisas e úteis.
Se a resposta não estiver no contexto, diga "A informação não está disponível nos documentos".`

// buildAnswerPrompt assembles the grounded QA prompt: preamble, prior turns,
// retrieved context, and the question.
func buildAnswerPrompt(question, docContext string, history []models.ChatMessage) string {
	var b strings.Builder
	b.WriteString(answerPreamble)
	b.WriteString("\n\n")
	if len(history) > 0 {
		b.WriteString("Histórico da conversa:\n")
		for _, msg := range history {
			switch msg.Role {
			case models.RoleUser:
				b.WriteString("Usuário: ")
			case models.RoleAssistant:
				b.WriteString("Assistente: ")
			default:
				continue
			}
			b.WriteString(msg.Content)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	b.WriteString("Contexto:\n")
	b.WriteString(docContext)
	b.WriteString("\n\nPergunta:\n")
	b.WriteString(question)
	b.WriteString("\n\nResposta:\n")
	return b.String()
}
