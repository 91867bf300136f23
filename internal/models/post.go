package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PostKind selects which content collection a post belongs to.
type PostKind string

const (
	PostKindEvent     PostKind = "event"
	PostKindCommunity PostKind = "community"
)

// Valid reports whether the kind names a known collection.
func (k PostKind) Valid() bool {
	return k == PostKindEvent || k == PostKindCommunity
}

// AdditionalImageCount is enforced at publish time: every post carries exactly
// five supplementary images alongside its main image.
const AdditionalImageCount = 5

// ImageURLList stores an ordered set of image URLs as a JSON column.
type ImageURLList []string

// Value serializes the list for storage.
func (l ImageURLList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan restores the list from its stored JSON form.
func (l *ImageURLList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, (*[]string)(l))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(l))
	default:
		return fmt.Errorf("image url list: unsupported source type %T", src)
	}
}

// Post is a published content document: an event or a community-service post.
// Documents are immutable after creation; the admin flow may only delete them.
type Post struct {
	BaseModel
	Kind                PostKind     `gorm:"size:16;index:idx_posts_kind_slug,priority:1;index" json:"kind"`
	Title               string       `gorm:"size:256" json:"title"`
	Slug                string       `gorm:"size:256;index:idx_posts_kind_slug,priority:2" json:"slug"`
	Summary             string       `gorm:"size:1024" json:"summary"`
	Content             string       `gorm:"type:text" json:"content"`
	Author              string       `gorm:"size:128" json:"author"`
	Category            string       `gorm:"size:128" json:"category"`
	MainImageURL        string       `gorm:"size:512" json:"mainImageUrl"`
	AdditionalImageURLs ImageURLList `gorm:"type:text" json:"additionalImageUrls"`
	CreatedBy           string       `gorm:"size:64" json:"createdBy,omitempty"`
	EventDate           *time.Time   `gorm:"index" json:"-"`
	Location            string       `gorm:"size:256" json:"location,omitempty"`
}

// EffectiveSlug falls back to the document id when no slug was derived at
// publish time.
func (p *Post) EffectiveSlug() string {
	if p.Slug != "" {
		return p.Slug
	}
	return p.ID
}
