package models

// Module names used as the taglink owner namespace
const (
	ModuleContent = "content"
	ModuleExperts = "experts"
)

// Taglink joins one content or expert item to one tag.
// (contentId, language, module) identifies the owner whose tag set is replaced on every save.
type Taglink struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TagID       int64  `gorm:"column:tagId;not null;index:idx_taglink_tag" json:"tagId"`
	ContentType string `gorm:"column:contentType;size:50;not null" json:"contentType"`
	ContentID   int64  `gorm:"column:contentId;not null;index:idx_taglink_owner,priority:1" json:"contentId"`
	Language    string `gorm:"column:language;size:10;not null;default:en;index:idx_taglink_owner,priority:2" json:"language"`
	Module      string `gorm:"column:module;size:50;not null;index:idx_taglink_owner,priority:3" json:"module"`
}

// TableName overrides the table name for Taglink
func (Taglink) TableName() string {
	return "taglink"
}

// Preference is a site preference key/value row.
type Preference struct {
	ID    int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title string `gorm:"column:title;size:100;uniqueIndex;not null" json:"title"`
	Value string `gorm:"column:value;type:text" json:"value"`
}

// TableName overrides the table name for Preference
func (Preference) TableName() string {
	return "preference"
}

// Session is a server-side session row. Session handling itself lives outside this service.
type Session struct {
	ID          string `gorm:"column:id;primaryKey;size:64" json:"id"`
	LastUpdated int64  `gorm:"column:lastUpdated;not null;default:0;index" json:"lastUpdated"`
	Data        string `gorm:"column:data;type:text" json:"data"`
}

// TableName overrides the table name for Session
func (Session) TableName() string {
	return "session"
}

// Schema lists every table model, in migration order.
func Schema() []interface{} {
	return []interface{}{
		&Content{},
		&Expert{},
		&User{},
		&Block{},
		&Taglink{},
		&Preference{},
		&Session{},
	}
}
