package trends

import (
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// Entity labels
const (
	LabelPerson       = "PERSON"
	LabelOrganization = "ORGANIZATION"
	LabelLocation     = "LOCATION"
)

// Entity is a named entity mentioned in text.
type Entity struct {
	Text  string
	Label string
}

// EntityRecognizer finds named entities in free text.
type EntityRecognizer interface {
	Entities(text string) ([]Entity, error)
}

// organizationSuffixes mark a proper-noun phrase as an organization.
var organizationSuffixes = map[string]bool{
	"inc": true, "corp": true, "corporation": true, "ltd": true, "llc": true, "plc": true,
	"bank": true, "group": true, "exchange": true, "foundation": true, "labs": true,
	"capital": true, "commission": true, "reserve": true, "fund": true, "ventures": true,
	"holdings": true, "markets": true, "securities": true, "association": true,
}

// notOrganizations are common all-caps words in crypto news that are not organizations.
var notOrganizations = map[string]bool{
	"ETF": true, "ETFS": true, "USD": true, "CEO": true, "CTO": true, "NFT": true, "NFTS": true,
	"AI": true, "DEX": true, "CEX": true, "DEFI": true, "IPO": true, "GDP": true, "US": true,
	"UK": true, "EU": true, "BTC": true, "ETH": true, "SOL": true, "API": true, "TVL": true,
}

// ProseRecognizer recognizes people and places with prose's tagger and chunker. Proper-noun
// runs it leaves unlabeled become organizations when they end with an organizational word or
// are short acronyms.
type ProseRecognizer struct{}

// Entities implements EntityRecognizer.
func (ProseRecognizer) Entities(text string) ([]Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}

	var found []Entity
	labeled := make(map[string]bool)
	for _, ent := range doc.Entities() {
		label := mapLabel(ent.Label)
		name := cleanEntity(ent.Text)
		if label == "" || name == "" {
			continue
		}
		found = append(found, Entity{Text: name, Label: label})
		labeled[name] = true
	}

	for _, phrase := range properNounRuns(doc.Tokens()) {
		if labeled[phrase] {
			continue
		}
		if isOrganization(phrase) {
			found = append(found, Entity{Text: phrase, Label: LabelOrganization})
		}
	}

	return found, nil
}

func mapLabel(label string) string {
	switch strings.ToUpper(label) {
	case "PERSON":
		return LabelPerson
	case "ORG", "ORGANIZATION":
		return LabelOrganization
	case "GPE", "LOC", "LOCATION":
		return LabelLocation
	default:
		return ""
	}
}

// properNounRuns joins consecutive NNP/NNPS tokens into phrases.
func properNounRuns(toks []prose.Token) []string {
	var runs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			runs = append(runs, cleanEntity(strings.Join(current, " ")))
			current = nil
		}
	}
	for _, tok := range toks {
		if tok.Tag == "NNP" || tok.Tag == "NNPS" {
			current = append(current, tok.Text)
			continue
		}
		flush()
	}
	flush()
	return runs
}

// isOrganization applies the suffix and acronym rules to a proper-noun phrase.
func isOrganization(phrase string) bool {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return false
	}

	last := strings.ToLower(strings.Trim(words[len(words)-1], "."))
	if len(words) > 1 && organizationSuffixes[last] {
		return true
	}

	if len(words) == 1 {
		w := words[0]
		if len(w) < 2 || len(w) > 5 || notOrganizations[w] {
			return false
		}
		for _, r := range w {
			if !unicode.IsUpper(r) {
				return false
			}
		}
		return true
	}
	return false
}

func cleanEntity(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, ".,;:!?\"'()[]")
}
