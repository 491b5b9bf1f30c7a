package culturo

import "time"

// CulturalContext names the register a translation is adapted to.
type CulturalContext string

const (
	// ContextGeneral is a standard translation for everyday use.
	ContextGeneral CulturalContext = "general"
	// ContextFormal targets professional, academic or business settings.
	ContextFormal CulturalContext = "formal"
	// ContextCasual targets informal conversation with friends and family.
	ContextCasual CulturalContext = "casual"
	// ContextAcademic targets research, papers and educational content.
	ContextAcademic CulturalContext = "academic"
	// ContextCreative targets literature, poetry, music and artistic expression.
	ContextCreative CulturalContext = "creative"
	// ContextTechnical targets technical documentation and manuals.
	ContextTechnical CulturalContext = "technical"
)

// TranslationRequest is the input of a cultural translation.
type TranslationRequest struct {
	Text            string          `json:"text"`
	SourceLang      string          `json:"source_lang"`
	TargetLang      string          `json:"target_lang"`
	CulturalContext CulturalContext `json:"cultural_context,omitempty"`
}

// TranslationResult holds the three artifacts produced for a request.
type TranslationResult struct {
	CulturalTranslation string `json:"cultural_translation"`
	LiteralTranslation  string `json:"literal_translation"`
	CulturalNotes       string `json:"cultural_notes"`
}

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of a language-learning conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRequest is a single learner message sent to the tutor.
type ChatRequest struct {
	Message  string `json:"message"`
	Language string `json:"language,omitempty"`
	Context  string `json:"context,omitempty"`
}

// ChatReply is the tutor's answer to a ChatRequest.
type ChatReply struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// TimestampLayout renders timestamps with millisecond precision in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp formats t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
