package fee

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vehicle-storage-backend/internal/model"
)

// First numeric token immediately followed by a currency marker, e.g.
// "120€", "49,90 EUR". Comma is accepted as decimal separator.
var extraRe = regexp.MustCompile(`(\d+(?:[.,]\d{1,2})?)\s*(?:€|EUR)`)

// ExtrasFromNotes scans the notes text for a single ad hoc charge. The
// heuristic is deliberately narrow: the first matching token produces one
// Extra dated now, carrying the whole notes text as description; anything
// else yields no extras. It runs once at record creation and the result is
// frozen — later edits to the notes never change stored extras.
func ExtrasFromNotes(notes string, now time.Time) []model.Extra {
	m := extraRe.FindStringSubmatch(strings.ToUpper(notes))
	if m == nil {
		return nil
	}

	cost, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "."))
	if err != nil {
		return nil
	}

	return []model.Extra{{
		Description: notes,
		Cost:        cost,
		Date:        now.Format(model.DateLayout),
	}}
}
