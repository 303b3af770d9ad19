package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
)

func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserSuspended
}

type User struct {
	ID           int        `db:"id"`
	Email        string     `db:"email"`
	FullName     string     `db:"full_name"`
	PasswordHash string     `db:"password_hash"`
	Role         Role       `db:"role"`
	Status       UserStatus `db:"status"`
	ReferralCode string     `db:"referral_code"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

type Package struct {
	ID          int       `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Price       Money     `db:"price"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type PaymentMethod struct {
	Code         string `db:"code"`
	Name         string `db:"name"`
	Instructions string `db:"instructions"`
	IsActive     bool   `db:"is_active"`
}

type Enrollment struct {
	ID            int       `db:"id"`
	UserID        int       `db:"user_id"`
	PackageID     int       `db:"package_id"`
	TransactionID int       `db:"transaction_id"`
	CreatedAt     time.Time `db:"created_at"`
}

type ContactStatus string

const (
	ContactUnread   ContactStatus = "unread"
	ContactRead     ContactStatus = "read"
	ContactReplied  ContactStatus = "replied"
	ContactArchived ContactStatus = "archived"
)

func (s ContactStatus) Valid() bool {
	switch s {
	case ContactUnread, ContactRead, ContactReplied, ContactArchived:
		return true
	}
	return false
}

type ContactPriority string

const (
	PriorityLow    ContactPriority = "low"
	PriorityNormal ContactPriority = "normal"
	PriorityHigh   ContactPriority = "high"
)

func (p ContactPriority) Valid() bool {
	return p == PriorityLow || p == PriorityNormal || p == PriorityHigh
}

type ContactMessage struct {
	ID        int             `db:"id"`
	Name      string          `db:"name"`
	Email     string          `db:"email"`
	Subject   string          `db:"subject"`
	Message   string          `db:"message"`
	Status    ContactStatus   `db:"status"`
	Priority  ContactPriority `db:"priority"`
	Reply     string          `db:"reply"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// MarkRead moves an unread message to read; other states are kept.
func (c *ContactMessage) MarkRead() bool {
	if c.Status != ContactUnread {
		return false
	}
	c.Status = ContactRead
	return true
}

// SetReply stores the reply text; a non-empty reply marks the message replied.
func (c *ContactMessage) SetReply(reply string) {
	c.Reply = reply
	if reply != "" {
		c.Status = ContactReplied
	}
}
