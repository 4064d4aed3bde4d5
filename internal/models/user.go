package models

import (
	"fmt"

	"github.com/localnerve/tuskfish/internal/validation"
)

// User is a row of the user table. Users carry no type discriminator.
type User struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	AdminEmail   string `gorm:"column:adminEmail;size:255;uniqueIndex;not null" json:"adminEmail" validate:"required,email"`
	PasswordHash string `gorm:"column:passwordHash;size:255;not null" json:"-"`
	UserGroup    int64  `gorm:"column:userGroup;not null;default:2" json:"userGroup" validate:"min=1,max=2"`
	YubikeyID    string `gorm:"column:yubikeyId;size:12" json:"yubikeyId" validate:"omitempty,len=12,alphanum"`
	YubikeyID2   string `gorm:"column:yubikeyId2;size:12" json:"yubikeyId2" validate:"omitempty,len=12,alphanum"`
	LoginErrors  int64  `gorm:"column:loginErrors;not null;default:0" json:"loginErrors" validate:"min=0"`
	OnlineStatus int64  `gorm:"column:onlineStatus;not null;default:0" json:"onlineStatus" validate:"boolint"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "user"
}

func (u *User) fields() []field {
	return []field{
		{column: "id", ptr: &u.ID},
		{column: "adminEmail", ptr: &u.AdminEmail},
		{column: "passwordHash", ptr: &u.PasswordHash},
		{column: "userGroup", ptr: &u.UserGroup},
		{column: "yubikeyId", ptr: &u.YubikeyID},
		{column: "yubikeyId2", ptr: &u.YubikeyID2},
		{column: "loginErrors", ptr: &u.LoginErrors},
		{column: "onlineStatus", ptr: &u.OnlineStatus},
	}
}

func (u *User) Load(row map[string]any, links Links) error {
	if err := loadFields(u.fields(), row, links); err != nil {
		return err
	}
	return u.Validate()
}

func (u *User) Persistable(links Links) map[string]any {
	return persistFields(u.fields(), links, "id")
}

func (u *User) Validate() error {
	if err := validation.ValidateStruct(u); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	return nil
}

func (u *User) Key() int64          { return u.ID }
func (u *User) ContentType() string { return "" }
