// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限ロールを表す。
type Role string

const (
	// RoleUser は一般ユーザー。
	RoleUser Role = "user"
	// RoleAdmin は管理者（モデレーター）。
	RoleAdmin Role = "admin"
)

// User はサービス利用ユーザーを表す。
// Emailは作成時にのみ一意性が検証される。
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Avatar       string    `json:"avatar,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Followers    []string  `json:"followers"`
	Following    []string  `json:"following"`
	XP           int       `json:"xp"`
	Badges       []Badge   `json:"badges"`
	JoinedAt     time.Time `json:"joinedAt"`
	PasswordHash string    `json:"passwordHash,omitempty"`
}

// IsAdmin はユーザーが管理者ロールを持つかを返す。
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Public はパスワードハッシュを除いたユーザーのコピーを返す。
// 記事の著者スナップショットやAPIレスポンスに使用する。
func (u User) Public() User {
	u = u.Clone()
	u.PasswordHash = ""
	return u
}

// Clone はスライスを含めたユーザーのディープコピーを返す。
func (u User) Clone() User {
	u.Followers = cloneStrings(u.Followers)
	u.Following = cloneStrings(u.Following)
	if u.Badges != nil {
		badges := make([]Badge, len(u.Badges))
		copy(badges, u.Badges)
		u.Badges = badges
	}
	return u
}

// Badge はユーザーが獲得したバッジを表す。付与後は変更されない。
type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	EarnedAt    time.Time `json:"earnedAt"`
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}
