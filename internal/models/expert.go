package models

import (
	"fmt"
	"strings"

	"github.com/localnerve/tuskfish/internal/validation"
)

// TypeExpert is the discriminator of expert rows.
const TypeExpert = "TfExpert"

// Expert is a row of the expert table (the experts directory module).
type Expert struct {
	ID              int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Type            string `gorm:"column:type;size:50;not null" json:"type" validate:"required,eq=TfExpert"`
	Salutation      int64  `gorm:"column:salutation;not null;default:0" json:"salutation" validate:"min=0,max=10"`
	FirstName       string `gorm:"column:firstName;size:255" json:"firstName" validate:"max=255"`
	MidName         string `gorm:"column:midName;size:255" json:"midName" validate:"max=255"`
	LastName        string `gorm:"column:lastName;size:255;index" json:"lastName" validate:"required,max=255"`
	Gender          int64  `gorm:"column:gender;not null;default:0" json:"gender" validate:"min=0,max=3"`
	Job             string `gorm:"column:job;size:255" json:"job" validate:"max=255"`
	Experience      string `gorm:"column:experience;type:text" json:"experience"`
	Projects        string `gorm:"column:projects;type:text" json:"projects"`
	Publications    string `gorm:"column:publications;type:text" json:"publications"`
	BusinessUnit    string `gorm:"column:businessUnit;size:255" json:"businessUnit" validate:"max=255"`
	Organisation    string `gorm:"column:organisation;size:255" json:"organisation" validate:"max=255"`
	Address         string `gorm:"column:address;type:text" json:"address"`
	Country         int64  `gorm:"column:country;not null;default:0;index" json:"country" validate:"min=0"`
	Email           string `gorm:"column:email;size:255" json:"email" validate:"omitempty,email"`
	Mobile          string `gorm:"column:mobile;size:50" json:"mobile" validate:"max=50"`
	Fax             string `gorm:"column:fax;size:50" json:"fax" validate:"max=50"`
	ProfileLink     string `gorm:"column:profileLink;size:255" json:"profileLink" validate:"omitempty,url"`
	Image           string `gorm:"column:image;size:255" json:"image" validate:"max=255"`
	Language        string `gorm:"column:language;size:10;not null;default:en" json:"language" validate:"required,max=10,alpha"`
	SubmissionTime  int64  `gorm:"column:submissionTime;not null;default:0" json:"submissionTime" validate:"min=0"`
	LastUpdated     int64  `gorm:"column:lastUpdated;not null;default:0" json:"lastUpdated" validate:"min=0"`
	ExpiresOn       string `gorm:"column:expiresOn;size:10" json:"expiresOn" validate:"isodate"`
	Counter         int64  `gorm:"column:counter;not null;default:0" json:"counter" validate:"min=0"`
	OnlineStatus    int64  `gorm:"column:onlineStatus;not null;default:0;index" json:"onlineStatus" validate:"boolint"`
	MetaTitle       string `gorm:"column:metaTitle;size:255" json:"metaTitle" validate:"max=255"`
	MetaDescription string `gorm:"column:metaDescription;size:255" json:"metaDescription" validate:"max=255"`
	MetaSeo         string `gorm:"column:metaSeo;size:255" json:"metaSeo" validate:"max=255"`
}

// TableName overrides the table name for Expert
func (Expert) TableName() string {
	return "expert"
}

// NewExpert returns an offline expert with defaults set.
func NewExpert() *Expert {
	return &Expert{Type: TypeExpert, Language: "en"}
}

func (e *Expert) fields() []field {
	return []field{
		{column: "id", ptr: &e.ID},
		{column: "type", ptr: &e.Type},
		{column: "salutation", ptr: &e.Salutation},
		{column: "firstName", ptr: &e.FirstName},
		{column: "midName", ptr: &e.MidName},
		{column: "lastName", ptr: &e.LastName},
		{column: "gender", ptr: &e.Gender},
		{column: "job", ptr: &e.Job},
		{column: "experience", ptr: &e.Experience, html: true},
		{column: "projects", ptr: &e.Projects, html: true},
		{column: "publications", ptr: &e.Publications, html: true},
		{column: "businessUnit", ptr: &e.BusinessUnit},
		{column: "organisation", ptr: &e.Organisation},
		{column: "address", ptr: &e.Address},
		{column: "country", ptr: &e.Country},
		{column: "email", ptr: &e.Email},
		{column: "mobile", ptr: &e.Mobile},
		{column: "fax", ptr: &e.Fax},
		{column: "profileLink", ptr: &e.ProfileLink},
		{column: "image", ptr: &e.Image},
		{column: "language", ptr: &e.Language},
		{column: "submissionTime", ptr: &e.SubmissionTime},
		{column: "lastUpdated", ptr: &e.LastUpdated},
		{column: "expiresOn", ptr: &e.ExpiresOn},
		{column: "counter", ptr: &e.Counter},
		{column: "onlineStatus", ptr: &e.OnlineStatus},
		{column: "metaTitle", ptr: &e.MetaTitle},
		{column: "metaDescription", ptr: &e.MetaDescription},
		{column: "metaSeo", ptr: &e.MetaSeo},
	}
}

func (e *Expert) Load(row map[string]any, links Links) error {
	if err := loadFields(e.fields(), row, links); err != nil {
		return err
	}
	return e.Validate()
}

func (e *Expert) Persistable(links Links) map[string]any {
	return persistFields(e.fields(), links, "id")
}

func (e *Expert) Validate() error {
	if err := validation.ValidateStruct(e); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	return nil
}

func (e *Expert) Key() int64          { return e.ID }
func (e *Expert) ContentType() string { return e.Type }

// FullName joins the non-empty name parts.
func (e *Expert) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.FirstName, e.MidName, e.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
