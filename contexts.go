package culturo

// ContextInfo describes a cultural context for prompts and for clients.
type ContextInfo struct {
	ID          CulturalContext `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`

	// PromptDescription is embedded (upper-cased) in the translation prompt.
	PromptDescription string `json:"-"`
	// Instructions is the register-specific directive for the model.
	Instructions string `json:"-"`
}

// contextCatalog is ordered the way clients list the contexts.
var contextCatalog = []ContextInfo{
	{
		ID:                ContextGeneral,
		Name:              "Geral",
		Description:       "Tradução padrão para uso cotidiano",
		PromptDescription: "tradução padrão para uso cotidiano",
		Instructions:      "Use um tom neutro e natural, adequado ao uso cotidiano.",
	},
	{
		ID:                ContextFormal,
		Name:              "Formal",
		Description:       "Contexto profissional e acadêmico",
		PromptDescription: "contexto profissional, acadêmico ou empresarial",
		Instructions:      "Use linguagem polida e profissional.",
	},
	{
		ID:                ContextCasual,
		Name:              "Informal",
		Description:       "Conversação com amigos e familiares",
		PromptDescription: "conversação informal com amigos e familiares",
		Instructions:      "Use linguagem casual e natural.",
	},
	{
		ID:                ContextAcademic,
		Name:              "Acadêmico",
		Description:       "Pesquisas e conteúdo educacional",
		PromptDescription: "pesquisas, artigos científicos e conteúdo educacional",
		Instructions:      "Use terminologia precisa e formal.",
	},
	{
		ID:                ContextCreative,
		Name:              "Criativo",
		Description:       "Literatura e expressão artística",
		PromptDescription: "literatura, poesia, música e expressão artística",
		Instructions:      "Preserve elementos artísticos e emocionais.",
	},
	{
		ID:                ContextTechnical,
		Name:              "Técnico",
		Description:       "Documentação especializada",
		PromptDescription: "documentação técnica, manuais e especializada",
		Instructions:      "Use terminologia especializada correta.",
	},
}

// Contexts returns the cultural context catalog in display order.
func Contexts() []ContextInfo {
	out := make([]ContextInfo, len(contextCatalog))
	copy(out, contextCatalog)
	return out
}

// LookupContext returns the catalog entry for id.
// Unknown or empty ids resolve to the general context.
func LookupContext(id CulturalContext) ContextInfo {
	for _, info := range contextCatalog {
		if info.ID == id {
			return info
		}
	}
	return contextCatalog[0]
}

// IsKnownContext reports whether id names a catalog entry.
func IsKnownContext(id CulturalContext) bool {
	for _, info := range contextCatalog {
		if info.ID == id {
			return true
		}
	}
	return false
}
