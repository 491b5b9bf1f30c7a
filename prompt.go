package culturo

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Prompt is a system/user message pair sent to the upstream model.
type Prompt struct {
	System string
	User   string
}

const translatorPersona = `Você é um tradutor profissional especializado em tradução cultural e contextual. Sua função é traduzir textos considerando profundamente o contexto cultural, social e situacional especificado. Adapte a tradução para que soe natural e apropriada para o público-alvo no contexto específico, mantendo o significado original mas ajustando o tom, registro e expressões idiomáticas conforme necessário.`

// BuildTranslationPrompt renders the prompt for a cultural translation.
// The source text is embedded verbatim.
func BuildTranslationPrompt(req TranslationRequest) Prompt {
	sourceName := GetLanguageName(req.SourceLang)
	targetName := GetLanguageName(req.TargetLang)
	info := LookupContext(req.CulturalContext)

	user := fmt.Sprintf(`Traduza o seguinte texto de %s para %s.

CONTEXTO CULTURAL ESPECÍFICO: %s

Instruções importantes:
1. Adapte a tradução ao contexto cultural especificado
2. Considere as nuances culturais, sociais e situacionais
3. Use o tom e registro apropriados para o contexto
4. Mantenha o significado original, mas adapte a forma
5. Para contexto formal: use linguagem polida e profissional
6. Para contexto informal: use linguagem casual e natural
7. Para contexto acadêmico: use terminologia precisa e formal
8. Para contexto criativo: preserve elementos artísticos e emocionais
9. Para contexto técnico: use terminologia especializada correta

Registro exigido (%s): %s

Texto original: %s

Forneça a resposta no seguinte formato JSON:
{
  "cultural_translation": "tradução culturalmente adaptada",
  "literal_translation": "tradução literal direta",
  "cultural_notes": "explicação detalhada das adaptações culturais feitas, incluindo expressões idiomáticas, referências culturais e justificativas das mudanças"
}`, sourceName, targetName, cases.Upper(language.BrazilianPortuguese).String(info.PromptDescription), info.Name, info.Instructions, req.Text)

	return Prompt{System: translatorPersona, User: user}
}

// BuildChatPrompt renders the tutor system prompt for the practised language.
func BuildChatPrompt(lang string) string {
	return fmt.Sprintf(`Você é um assistente de aprendizado de idiomas especializado em %[1]s.
Sua função é ajudar o usuário a praticar o idioma de forma natural e educativa.
- Responda sempre no idioma que o usuário está praticando (%[1]s)
- Seja paciente e encorajador
- Corrija erros de forma construtiva
- Forneça explicações claras quando necessário
- Mantenha as conversas naturais e interessantes
- Adapte o nível de dificuldade ao do usuário`, lang)
}
