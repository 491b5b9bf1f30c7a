// Package culturo provides culturally aware translation and a
// language-learning chat tutor on top of a chat-completion model.
//
// Culturo asks the model for a cultural translation, a literal translation
// and notes on the cultural choices made, tolerating replies that wrap the
// JSON answer in prose or return no JSON at all.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/culturo"
//	    "github.com/ZaguanLabs/culturo/cache"
//	    "github.com/ZaguanLabs/culturo/provider"
//	)
//
//	func main() {
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("DEEPSEEK_API_KEY"),
//	    })
//
//	    t := culturo.NewTranslator(p,
//	        culturo.WithCache(cache.NewInMemoryCache(time.Hour)),
//	        culturo.WithCacheNamespace(p.Model()),
//	    )
//
//	    result, err := t.Translate(context.Background(), culturo.TranslationRequest{
//	        Text:            "Break a leg!",
//	        SourceLang:      "en",
//	        TargetLang:      "pt",
//	        CulturalContext: culturo.ContextCasual,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.CulturalTranslation) // Boa sorte!
//	}
package culturo
