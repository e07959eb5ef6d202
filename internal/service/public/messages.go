package public

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/jwalitptl/followups/internal/model"
)

const (
	keyContact     = "public.contact"
	genericContact = "Please contact the clinic."
)

var (
	messages = catalog.NewBuilder(catalog.Fallback(language.English))

	// record language to catalog tag; anything else gets genericContact
	supported = map[model.Language]language.Tag{
		model.LanguageEN: language.English,
		model.LanguageHI: language.Hindi,
	}
)

func init() {
	mustSet(language.English, keyContact, "Please contact the clinic for your follow-up.")
	mustSet(language.Hindi, keyContact, "कृपया अपनी फॉलो-अप के लिए क्लिनिक आएं।")
}

func mustSet(tag language.Tag, key, msg string) {
	if err := messages.SetString(tag, key, msg); err != nil {
		panic(err)
	}
}

// Message returns the patient-facing contact line for a record language.
func Message(lang model.Language) string {
	tag, ok := supported[lang]
	if !ok {
		return genericContact
	}
	return message.NewPrinter(tag, message.Catalog(messages)).Sprintf(keyContact)
}
