package transform

import "regexp"

// StatusFlags are the four 0/1 outcome flags derived from one tax-status
// message. TaxToPay is 1 exactly when the other three are all 0.
type StatusFlags struct {
	ExtractionError int
	NotDeclared     int
	TaxRefund       int
	TaxToPay        int
}

// StatusClassifier classifies free-text tax-status messages from the tax
// authority. The three matchers are compiled once and the classifier is
// safe for concurrent use.
type StatusClassifier struct {
	extractionError *regexp.Regexp
	notDeclared     *regexp.Regexp
	taxRefund       *regexp.Regexp
}

func NewStatusClassifier() *StatusClassifier {
	return &StatusClassifier{
		// empty response, diverging birth date, "not collected" and
		// "an inconsistency occurred" all mean the status was never read
		extractionError: regexp.MustCompile(
			`(?i)(?:^\s*$` +
				`|\bdata\sde\snascimento\sinformada\b.*\bestá\sdive` +
				`|\bnão\scoletado` +
				`|\bocorreu\suma\sinconsistência\s?[.])`),
		notDeclared: regexp.MustCompile(
			`(?i)(?:\bconsta\sapresentação\sde\sdeclaração\sanual\sde\sisento\b` +
				`|\bapresentação\sda\sdeclaração\scomo\sisento\b` +
				`|\bdeclaração\sconsta\scomo\sisento\b` +
				`|\bdeclaração\sconsta\scomo\spedido\sde\sregularização\b` +
				`|\bsua\sdeclaração\snão\sconsta\sna\sbase\sde\sdados\b` +
				`|\bainda\snão\sestá\sna\sbase\b)`),
		taxRefund: regexp.MustCompile(
			`(?i)(?:\bsituação\sda\srestituição[:]\screditada\b` +
				`|\bsomente\sserá\spermitida\spor\smeio\sdo\scódigo\sde\sacesso\b` +
				`|\baguardando\sreagendamento\spelo\scontribuinte[.]?` +
				`|\bdevolvida\sà\sreceita\sfederal[,]?\sem\srazão\sdo\snão\sresgate\b` +
				`|\benviada\spara\scrédito\sno\sbanco\b` +
				`|\breagendada\spara\scrédito\sno\sbanco\b` +
				`|\bdados\sda\sliberação\sde\ssua\srestituição\b` +
				`|\bdeclaração\sestá\sna\sbase\sde\sdados\b` +
				`|\bestá\sna\sbase[,]\sutilize\so\sextrato\b` +
				`|\bdeclaração\sjá\sfoi\sprocessada[.]?$` +
				`|\brestituição[:]\saguardando\sdevolução\spelo\sbanco\b)`),
	}
}

// Classify evaluates one status message. A nil text matches no pattern,
// so all three primary flags come back 0 and TaxToPay, being their NOR,
// comes back 1.
func (c *StatusClassifier) Classify(text *string) StatusFlags {
	var f StatusFlags
	if text != nil {
		f.ExtractionError = matchFlag(c.extractionError, *text)
		f.NotDeclared = matchFlag(c.notDeclared, *text)
		f.TaxRefund = matchFlag(c.taxRefund, *text)
	}
	if f.ExtractionError == 0 && f.NotDeclared == 0 && f.TaxRefund == 0 {
		f.TaxToPay = 1
	}
	return f
}

func matchFlag(re *regexp.Regexp, s string) int {
	if re.MatchString(s) {
		return 1
	}
	return 0
}
