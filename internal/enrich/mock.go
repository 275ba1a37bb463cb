package enrich

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/amishk599/leadradar/internal/model"
)

const mockSource = "mock"

var mockPeople = []struct {
	first, last, title string
	phoneOnly          bool
	incomplete         bool
}{
	{first: "Katrin", last: "Vogel", title: "Geschäftsführerin"},
	{first: "Markus", last: "Brandt", title: "VP Sales"},
	{first: "Sabine", last: "Krüger", title: "Head of Sales DACH"},
	{first: "Tobias", last: "Hahn", title: "Sales Director", phoneOnly: true},
	{first: "Lena", last: "", title: "Head of People", incomplete: true},
	{first: "Daniel", last: "Fischer", title: "Talent Acquisition Lead"},
}

// MockEnricher returns deterministic contacts derived from the domain, for
// offline runs and demos. The generated set always includes one phone-only
// contact and one incomplete contact (no last name) so the completeness
// rule is exercised.
type MockEnricher struct{}

func NewMockEnricher() *MockEnricher { return &MockEnricher{} }

func (MockEnricher) Enrich(ctx context.Context, domain string, maxContacts int) ([]model.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := fnv.New32a()
	h.Write([]byte(domain))
	seed := h.Sum32()

	contacts := make([]model.Contact, 0, maxContacts)
	for i := 0; i < len(mockPeople) && len(contacts) < maxContacts; i++ {
		p := mockPeople[i]
		c := model.Contact{
			FirstName: p.first,
			LastName:  p.last,
			Title:     p.title,
			Seniority: model.ClassifySeniority(p.title),
			Source:    mockSource,
		}
		if !p.phoneOnly && !p.incomplete {
			c.Email = asciiLower(p.first+"."+p.last) + "@" + domain
			c.LinkedInURL = "https://www.linkedin.com/in/" + asciiLower(p.first+"-"+p.last)
		}
		if p.phoneOnly {
			c.Phone = mockPhone(seed, i)
		}
		contacts = append(contacts, c)
	}
	return contacts, nil
}

var umlauts = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")

func asciiLower(s string) string {
	return umlauts.Replace(strings.ToLower(s))
}

func mockPhone(seed uint32, i int) string {
	n := (seed + uint32(i)*7919) % 10000000
	digits := []byte("0000000")
	for j := len(digits) - 1; j >= 0; j-- {
		digits[j] = byte('0' + n%10)
		n /= 10
	}
	return "+49 89 " + string(digits)
}
