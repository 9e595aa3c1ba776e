package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Department is one of the fixed academic departments
type Department string

const (
	DepartmentCSE  Department = "CSE"
	DepartmentISE  Department = "ISE"
	DepartmentEC   Department = "EC"
	DepartmentEEE  Department = "EEE"
	DepartmentCSBS Department = "CSBS"
	DepartmentEI   Department = "EI"
)

// Departments lists every department in display order
var Departments = []Department{
	DepartmentCSE,
	DepartmentISE,
	DepartmentEC,
	DepartmentEEE,
	DepartmentCSBS,
	DepartmentEI,
}

// IsValid reports whether d is a known department
func (d Department) IsValid() bool {
	for _, dept := range Departments {
		if d == dept {
			return true
		}
	}
	return false
}

// UserType distinguishes the two kinds of logged-in users
type UserType string

const (
	UserTypeAdmin   UserType = "admin"
	UserTypeStudent UserType = "student"
)

// AdminUserID is the fixed id of the single admin account
const AdminUserID = "admin"

// Student is an enrolled student
type Student struct {
	ID         string     `gorm:"type:varchar(10);primaryKey" json:"id"`
	Seq        int        `gorm:"not null;uniqueIndex" json:"-"`
	Name       string     `gorm:"type:varchar(100);not null" json:"name"`
	NameKey    string     `gorm:"type:varchar(100);not null;column:name_key" json:"-"`
	Department Department `gorm:"type:varchar(10);not null;index" json:"department"`
	DateAdded  time.Time  `gorm:"not null;column:date_added" json:"dateAdded"`
}

func (Student) TableName() string {
	return "students"
}

// BeforeSave keeps the search key in step with the name
func (s *Student) BeforeSave(*gorm.DB) error {
	s.NameKey = FoldKey(s.Name)
	return nil
}

// Class is a named class within a department
type Class struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name       string     `gorm:"type:varchar(100);not null" json:"name"`
	NameKey    string     `gorm:"type:varchar(100);not null;column:name_key" json:"-"`
	Department Department `gorm:"type:varchar(10);not null;index" json:"department"`
	CreatedAt  time.Time  `gorm:"not null" json:"createdAt"`
}

func (Class) TableName() string {
	return "classes"
}

// FoldKey lower-cases s with full Unicode folding. SQLite's LOWER() and LIKE
// only fold ASCII, so case-insensitive matching runs against stored keys.
func FoldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ClassNameKey normalizes a class name for per-department uniqueness
func ClassNameKey(name string) string {
	return FoldKey(name)
}

// AttendanceRecord is a single day's presence mark for a student.
// Day is the local calendar day (YYYY-MM-DD) the mark belongs to.
type AttendanceRecord struct {
	ID             string     `gorm:"type:varchar(36);primaryKey"`
	StudentID      string     `gorm:"type:varchar(10);not null;column:student_id"`
	StudentName    string     `gorm:"type:varchar(100);not null;column:student_name"`
	StudentNameKey string     `gorm:"type:varchar(100);not null;column:student_name_key"`
	Department     Department `gorm:"type:varchar(10);not null"`
	ClassName      string     `gorm:"type:varchar(100);column:class_name"`
	Day            string     `gorm:"type:varchar(10);not null"`
	MarkedAt       time.Time  `gorm:"not null;column:marked_at"`
	Latitude       *float64
	Longitude      *float64
	Address        string `gorm:"type:varchar(255)"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

func (r *AttendanceRecord) BeforeSave(*gorm.DB) error {
	r.StudentNameKey = FoldKey(r.StudentName)
	return nil
}

// HasLocation reports whether the record carries coordinates
func (r *AttendanceRecord) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// DailyCode is a login code valid until ExpiresAt
type DailyCode struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Code      string    `gorm:"type:varchar(32);not null"`
	Day       string    `gorm:"type:varchar(10);not null"`
	ExpiresAt time.Time `gorm:"not null;column:expires_at"`
	CreatedAt time.Time `gorm:"not null"`
}

func (DailyCode) TableName() string {
	return "daily_codes"
}

// IsActive reports whether the code can still be used at now
func (c *DailyCode) IsActive(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}

// Notification is an entry in the admin activity log
type Notification struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Message   string    `gorm:"type:varchar(500);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Session remembers the logged-in user behind a bearer token
type Session struct {
	ID         string     `gorm:"type:varchar(36);primaryKey"`
	UserType   UserType   `gorm:"type:varchar(10);not null;column:user_type"`
	UserID     string     `gorm:"type:varchar(20);not null;column:user_id"`
	UserName   string     `gorm:"type:varchar(100);column:user_name"`
	Department Department `gorm:"type:varchar(10)"`
	ExpiresAt  time.Time  `gorm:"not null;column:expires_at"`
	CreatedAt  time.Time  `gorm:"not null"`
}

func (Session) TableName() string {
	return "sessions"
}
