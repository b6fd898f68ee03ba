package roll

import (
	"github.com/louisbranch/kobold-keeper/internal/platform/errors/i18n"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Output formats double as message keys; en-US prints them unchanged.
const (
	msgRollLine        = "[%s] %s = %s (seed %s, fingerprint %s)\n"
	msgScopeHeader     = "\n%s after %d rolls\n"
	msgTableHeader     = "die\tsamples\tobserved\texpected\tstddev\tluck\tmin\tmax\n"
	msgRankHeader      = "\nranking by %s\n"
	msgRankTableHeader = "#\tscope\tsamples\tluck\tdelta\n"
)

func init() {
	pt := language.BrazilianPortuguese
	for key, msg := range map[string]string{
		msgRollLine:        "[%s] %s = %s (semente %s, impressão digital %s)\n",
		msgScopeHeader:     "\n%s após %d rolagens\n",
		msgTableHeader:     "dado\tamostras\tobservado\tesperado\tdesvio\tsorte\tmín\tmáx\n",
		msgRankHeader:      "\nclassificação por %s\n",
		msgRankTableHeader: "#\tescopo\tamostras\tsorte\tdelta\n",
	} {
		if err := message.SetString(pt, key, msg); err != nil {
			panic(err)
		}
	}
}

// newPrinter returns a printer for the catalog locale closest to locale, so
// error text and numbers agree on the language.
func newPrinter(locale string) *message.Printer {
	tag, err := language.Parse(i18n.GetCatalog(locale).Locale())
	if err != nil {
		tag = language.AmericanEnglish
	}
	return message.NewPrinter(tag)
}
