package models

import (
	"fmt"
	"strings"

	"github.com/localnerve/tuskfish/internal/validation"
)

// Content type discriminators stored in content.type
const (
	TypeArticle    = "TfArticle"
	TypeAudio      = "TfAudio"
	TypeCollection = "TfCollection"
	TypeDownload   = "TfDownload"
	TypeImage      = "TfImage"
	TypeStatic     = "TfStatic"
	TypeTag        = "TfTag"
	TypeVideo      = "TfVideo"
)

// ContentTypes lists every content discriminator.
var ContentTypes = []string{
	TypeArticle, TypeAudio, TypeCollection, TypeDownload,
	TypeImage, TypeStatic, TypeTag, TypeVideo,
}

// Content is a row of the content table. The concrete content types embed it.
type Content struct {
	ID              int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Type            string `gorm:"column:type;size:50;not null;index" json:"type" validate:"required,oneof=TfArticle TfAudio TfCollection TfDownload TfImage TfStatic TfTag TfVideo"`
	Template        string `gorm:"column:template;size:100" json:"template" validate:"omitempty,identifier"`
	Title           string `gorm:"column:title;size:255" json:"title" validate:"max=255"`
	Teaser          string `gorm:"column:teaser;type:text" json:"teaser"`
	Description     string `gorm:"column:description;type:text" json:"description"`
	Creator         string `gorm:"column:creator;size:255" json:"creator" validate:"max=255"`
	Media           string `gorm:"column:media;size:255" json:"media" validate:"max=255"`
	ExternalMedia   string `gorm:"column:externalMedia;size:255" json:"externalMedia" validate:"omitempty,url"`
	Format          string `gorm:"column:format;size:100" json:"format" validate:"max=100"`
	FileSize        int64  `gorm:"column:fileSize;not null;default:0" json:"fileSize" validate:"min=0"`
	Image           string `gorm:"column:image;size:255" json:"image" validate:"max=255"`
	Caption         string `gorm:"column:caption;size:255" json:"caption" validate:"max=255"`
	Date            string `gorm:"column:date;size:10;index" json:"date" validate:"isodate"`
	Parent          int64  `gorm:"column:parent;not null;default:0;index" json:"parent" validate:"min=0"`
	Language        string `gorm:"column:language;size:10;not null;default:en" json:"language" validate:"required,max=10,alpha"`
	Rights          int64  `gorm:"column:rights;not null;default:0" json:"rights" validate:"min=0,max=10"`
	Publisher       string `gorm:"column:publisher;size:255" json:"publisher" validate:"max=255"`
	OnlineStatus    int64  `gorm:"column:onlineStatus;not null;default:0;index" json:"onlineStatus" validate:"boolint"`
	SubmissionTime  int64  `gorm:"column:submissionTime;not null;default:0" json:"submissionTime" validate:"min=0"`
	LastUpdated     int64  `gorm:"column:lastUpdated;not null;default:0" json:"lastUpdated" validate:"min=0"`
	ExpiresOn       string `gorm:"column:expiresOn;size:10" json:"expiresOn" validate:"isodate"`
	Counter         int64  `gorm:"column:counter;not null;default:0" json:"counter" validate:"min=0"`
	MinimumViews    int64  `gorm:"column:minimumViews;not null;default:0" json:"minimumViews" validate:"min=0"`
	InFeed          int64  `gorm:"column:inFeed;not null;default:1" json:"inFeed" validate:"boolint"`
	MetaTitle       string `gorm:"column:metaTitle;size:255" json:"metaTitle" validate:"max=255"`
	MetaDescription string `gorm:"column:metaDescription;size:255" json:"metaDescription" validate:"max=255"`
	MetaSeo         string `gorm:"column:metaSeo;size:255" json:"metaSeo" validate:"omitempty,max=255"`
}

// TableName overrides the table name for Content
func (Content) TableName() string {
	return "content"
}

func (c *Content) fields() []field {
	return []field{
		{column: "id", ptr: &c.ID},
		{column: "type", ptr: &c.Type},
		{column: "template", ptr: &c.Template},
		{column: "title", ptr: &c.Title},
		{column: "teaser", ptr: &c.Teaser, html: true},
		{column: "description", ptr: &c.Description, html: true},
		{column: "creator", ptr: &c.Creator},
		{column: "media", ptr: &c.Media},
		{column: "externalMedia", ptr: &c.ExternalMedia},
		{column: "format", ptr: &c.Format},
		{column: "fileSize", ptr: &c.FileSize},
		{column: "image", ptr: &c.Image},
		{column: "caption", ptr: &c.Caption},
		{column: "date", ptr: &c.Date},
		{column: "parent", ptr: &c.Parent},
		{column: "language", ptr: &c.Language},
		{column: "rights", ptr: &c.Rights},
		{column: "publisher", ptr: &c.Publisher},
		{column: "onlineStatus", ptr: &c.OnlineStatus},
		{column: "submissionTime", ptr: &c.SubmissionTime},
		{column: "lastUpdated", ptr: &c.LastUpdated},
		{column: "expiresOn", ptr: &c.ExpiresOn},
		{column: "counter", ptr: &c.Counter},
		{column: "minimumViews", ptr: &c.MinimumViews},
		{column: "inFeed", ptr: &c.InFeed},
		{column: "metaTitle", ptr: &c.MetaTitle},
		{column: "metaDescription", ptr: &c.MetaDescription},
		{column: "metaSeo", ptr: &c.MetaSeo},
	}
}

// Load copies a row into the entity and validates it.
func (c *Content) Load(row map[string]any, links Links) error {
	if err := loadFields(c.fields(), row, links); err != nil {
		return err
	}
	return c.Validate()
}

// Persistable returns the writable columns. The id is excluded; it is the update key.
func (c *Content) Persistable(links Links) map[string]any {
	return persistFields(c.fields(), links, "id")
}

// Validate checks every field independently.
func (c *Content) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	if c.Type == TypeTag && c.Parent != 0 {
		return fmt.Errorf("%w: tags cannot have a parent", ErrInvalidField)
	}
	if c.ID != 0 && c.Parent == c.ID {
		return fmt.Errorf("%w: content cannot be its own parent", ErrInvalidField)
	}
	return nil
}

func (c *Content) Key() int64 { return c.ID }

// ContentType returns the discriminator.
func (c *Content) ContentType() string { return c.Type }

// Base returns the shared content columns of a concrete content type.
func (c *Content) Base() *Content { return c }

// SetOnlineStatus accepts 0 or 1.
func (c *Content) SetOnlineStatus(v int64) error {
	if v != 0 && v != 1 {
		return fmt.Errorf("%w: onlineStatus must be 0 or 1", ErrInvalidField)
	}
	c.OnlineStatus = v
	return nil
}

// Typed content. Each type pins its discriminator, default template and accepted media formats.

type Article struct{ Content }
type Audio struct{ Content }
type Collection struct{ Content }
type Download struct{ Content }
type Image struct{ Content }
type Static struct{ Content }
type Tag struct{ Content }
type Video struct{ Content }

var mediaFormats = map[string][]string{
	TypeAudio: {"audio/mpeg", "audio/ogg", "audio/x-wav", "audio/wav", "audio/mp4"},
	TypeVideo: {"video/mp4", "video/ogg", "video/webm"},
	TypeImage: {"image/jpeg", "image/png", "image/gif", "image/webp"},
}

// checkFormat rejects a media mimetype outside the type's whitelist.
func checkFormat(c *Content) error {
	allowed, ok := mediaFormats[c.Type]
	if !ok || c.Format == "" {
		return nil
	}
	for _, f := range allowed {
		if strings.EqualFold(f, c.Format) {
			return nil
		}
	}
	return fmt.Errorf("%w: format %q not allowed for %s", ErrInvalidField, c.Format, c.Type)
}

func newContent(kind string) Content {
	return Content{
		Type:     kind,
		Template: strings.ToLower(strings.TrimPrefix(kind, "Tf")),
		Language: "en",
		InFeed:   1,
	}
}

func (a *Audio) Validate() error {
	if err := a.Content.Validate(); err != nil {
		return err
	}
	return checkFormat(&a.Content)
}

func (a *Audio) Load(row map[string]any, links Links) error {
	if err := loadFields(a.fields(), row, links); err != nil {
		return err
	}
	return a.Validate()
}

func (v *Video) Validate() error {
	if err := v.Content.Validate(); err != nil {
		return err
	}
	return checkFormat(&v.Content)
}

func (v *Video) Load(row map[string]any, links Links) error {
	if err := loadFields(v.fields(), row, links); err != nil {
		return err
	}
	return v.Validate()
}

func (i *Image) Validate() error {
	if err := i.Content.Validate(); err != nil {
		return err
	}
	return checkFormat(&i.Content)
}

func (i *Image) Load(row map[string]any, links Links) error {
	if err := loadFields(i.fields(), row, links); err != nil {
		return err
	}
	return i.Validate()
}
