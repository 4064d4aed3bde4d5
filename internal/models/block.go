package models

import (
	"fmt"

	"github.com/localnerve/tuskfish/internal/validation"
)

// Block type discriminators stored in block.type
const (
	TypeBlockHTML          = "TfHtml"
	TypeBlockRecentContent = "TfRecentContent"
	TypeBlockSpotlight     = "TfSpotlight"
)

// Block is a row of the block table. Config holds the per-type settings document.
type Block struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Type         string `gorm:"column:type;size:50;not null" json:"type" validate:"required,oneof=TfHtml TfRecentContent TfSpotlight"`
	Position     string `gorm:"column:position;size:50;index" json:"position" validate:"omitempty,identifier"`
	Title        string `gorm:"column:title;size:255" json:"title" validate:"max=255"`
	HTML         string `gorm:"column:html;type:text" json:"html"`
	Config       JSON   `gorm:"column:config" json:"config"`
	Weight       int64  `gorm:"column:weight;not null;default:0" json:"weight" validate:"min=0"`
	Template     string `gorm:"column:template;size:100" json:"template" validate:"omitempty,identifier"`
	OnlineStatus int64  `gorm:"column:onlineStatus;not null;default:0" json:"onlineStatus" validate:"boolint"`
}

// TableName overrides the table name for Block
func (Block) TableName() string {
	return "block"
}

// RecentContentConfig is the Config document of a TfRecentContent block.
type RecentContentConfig struct {
	Items int      `json:"items"`
	Types []string `json:"types,omitempty"`
	Tags  []int64  `json:"tags,omitempty"`
}

func (b *Block) fields() []field {
	return []field{
		{column: "id", ptr: &b.ID},
		{column: "type", ptr: &b.Type},
		{column: "position", ptr: &b.Position},
		{column: "title", ptr: &b.Title},
		{column: "html", ptr: &b.HTML, html: true},
		{column: "config", ptr: &b.Config},
		{column: "weight", ptr: &b.Weight},
		{column: "template", ptr: &b.Template},
		{column: "onlineStatus", ptr: &b.OnlineStatus},
	}
}

func (b *Block) Load(row map[string]any, links Links) error {
	if err := loadFields(b.fields(), row, links); err != nil {
		return err
	}
	return b.Validate()
}

func (b *Block) Persistable(links Links) map[string]any {
	return persistFields(b.fields(), links, "id")
}

func (b *Block) Validate() error {
	if err := validation.ValidateStruct(b); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	if b.Type == TypeBlockRecentContent {
		var cfg RecentContentConfig
		if err := b.Config.Decode(&cfg); err != nil {
			return fmt.Errorf("%w: config: %v", ErrInvalidField, err)
		}
		if cfg.Items < 0 || cfg.Items > 50 {
			return fmt.Errorf("%w: config.items out of range", ErrInvalidField)
		}
	}
	return nil
}

func (b *Block) Key() int64          { return b.ID }
func (b *Block) ContentType() string { return b.Type }
