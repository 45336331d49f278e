package model

import (
	"time"

	"github.com/lasmate/Alisee/internal/money"
)

type AccountType int

const (
	AccountCustomer AccountType = 0
	AccountAdmin    AccountType = 1
)

func (t AccountType) Valid() bool {
	return t == AccountCustomer || t == AccountAdmin
}

type User struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Surname      string      `json:"surname"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	AccountType  AccountType `json:"accountType"`
	CreatedAt    time.Time   `json:"createdAt"`
	OrderIDs     []int64     `json:"orderIDs"`
}

func (u *User) IsAdmin() bool {
	return u.AccountType == AccountAdmin
}

// Session is one authenticated browser session. A user may hold several.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Item struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Image          string      `json:"image"`
	Size           *string     `json:"size"`
	Price          money.Cents `json:"price"`
	Quantity       int         `json:"quantity"`
	Category       string      `json:"category"`
	Tags           string      `json:"tags"`
	IsAvailable    bool        `json:"isAvailable"`
	IsCustomisable bool        `json:"isCustomisable"`
}

type Image struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Path string `json:"img_path"`
}
