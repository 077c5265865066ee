package diary

import (
	"database/sql/driver"
	"regexp"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const maxTags = 20

var hashtagRe = regexp.MustCompile(`#([\p{L}\p{N}_]{1,32})`)

// ExtractTags returns the unique lowercased hashtags in text, in order of
// first appearance.
func ExtractTags(text string) Tags {
	matches := hashtagRe.FindAllStringSubmatch(text, -1)

	out := make(Tags, 0, len(matches))
	seen := map[string]struct{}{}
	for _, m := range matches {
		t := strings.ToLower(m[1])
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)

		if len(out) >= maxTags {
			break
		}
	}
	return out
}

// Tags is a string list stored as text[] on postgres and as the same array
// literal in a text column elsewhere.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(t).Value()
}

func (t *Tags) Scan(src any) error {
	var a pq.StringArray
	if err := a.Scan(src); err != nil {
		return err
	}
	if a == nil {
		a = pq.StringArray{}
	}
	*t = Tags(a)
	return nil
}

func (Tags) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}
